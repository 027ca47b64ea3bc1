package readiness

import "fmt"

// ForecastBands are the projected-fatigue boundaries for the weekly outlook.
type ForecastBands struct {
	Maintain float64 `yaml:"maintain" json:"maintain"`
	Reduce   float64 `yaml:"reduce" json:"reduce"`
	Deload   float64 `yaml:"deload" json:"deload"`
}

// DefaultForecastBands returns 40/60/80.
func DefaultForecastBands() ForecastBands {
	return ForecastBands{Maintain: 40, Reduce: 60, Deload: 80}
}

// Band is a weekly fatigue outlook.
type Band string

const (
	BandLow          Band = "low"
	BandModerate     Band = "moderate"
	BandModerateHigh Band = "moderate_high"
	BandVeryHigh     Band = "very_high"
)

// Forecast is the projected end-of-week fatigue for a plan.
type Forecast struct {
	Current        float64 `json:"current"`
	Projected      float64 `json:"projected"`
	Sessions       int     `json:"sessions"`
	Band           Band    `json:"band"`
	Recommendation string  `json:"recommendation"`
}

// ForecastWeeklyFatigue simulates a week of evenly spaced sessions at avgRPE
// and keys a recommendation off the projected fatigue.
func ForecastWeeklyFatigue(current float64, plannedSessions int, avgRPE float64, m FatigueModel, bands ForecastBands) Forecast {
	m = m.orDefault()
	if bands == (ForecastBands{}) {
		bands = DefaultForecastBands()
	}
	f := clamp(current, 0, 100)
	n := max(0, min(plannedSessions, 7))
	if n == 0 {
		f = decay(f, 7, m)
	} else {
		gap := float64(7-n) / float64(n)
		rpe := clamp(avgRPE, 0, 10)
		for range n {
			f = decay(f, gap, m)
			f = clamp(f+rpe*m.AccumulationPerRPE, 0, 100)
		}
	}
	f = round1f(f)

	fc := Forecast{Current: round1f(clamp(current, 0, 100)), Projected: f, Sessions: n}
	switch {
	case f >= bands.Deload:
		fc.Band = BandVeryHigh
		fc.Recommendation = fmt.Sprintf("Projected fatigue %.0f is very high; schedule a deload this week.", f)
	case f >= bands.Reduce:
		fc.Band = BandModerateHigh
		fc.Recommendation = fmt.Sprintf("Projected fatigue %.0f is climbing; reduce volume or intensity.", f)
	case f >= bands.Maintain:
		fc.Band = BandModerate
		fc.Recommendation = fmt.Sprintf("Projected fatigue %.0f is manageable; keep the current plan.", f)
	default:
		fc.Band = BandLow
		fc.Recommendation = fmt.Sprintf("Projected fatigue %.0f is low; push intensity this week.", f)
	}
	return fc
}
