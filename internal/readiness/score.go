package readiness

import "math"

// Component weights. They sum to 100 at a quality multiplier of 1.
const (
	sleepWeight     = 30.0
	stressWeight    = 20.0
	nutritionWeight = 15.0
	restWeight      = 20.0
	rpeWeight       = 15.0
)

// Neutral values used when a check-in leaves a field blank.
const (
	NeutralSleepHours   = 7.0
	NeutralSleepQuality = 3
	NeutralStress       = 3
	NeutralNutrition    = 3
	NeutralDaysSince    = 2
	NeutralPreviousRPE  = 7.0
)

// Input is a pre-session check-in. Every field is optional. Ratings are 1-5;
// stress 5 is the most stressed.
type Input struct {
	SleepHours           *float64 `json:"sleep_hours,omitempty"`
	SleepQuality         *int     `json:"sleep_quality,omitempty"`
	StressLevel          *int     `json:"stress_level,omitempty"`
	NutritionRating      *int     `json:"nutrition_rating,omitempty"`
	PreviousSessionRPE   *float64 `json:"previous_session_rpe,omitempty"`
	DaysSinceLastSession *int     `json:"days_since_last_session,omitempty"`
}

// Components is the per-factor contribution to a score.
type Components struct {
	Sleep     float64 `json:"sleep"`
	Stress    float64 `json:"stress"`
	Nutrition float64 `json:"nutrition"`
	Rest      float64 `json:"rest"`
	Effort    float64 `json:"previous_effort"`
}

// Score is a readiness result in [0,100].
type Score struct {
	Score          float64    `json:"score"`
	Tier           Tier       `json:"tier"`
	Recommendation string     `json:"recommendation"`
	Components     Components `json:"components"`
	Defaulted      []string   `json:"defaulted,omitempty"`
}

// CalculateScore combines the check-in into a 0-100 readiness score. Missing
// fields fall back to neutral values and are listed in Defaulted.
func CalculateScore(in Input) Score {
	var defaulted []string

	hours := NeutralSleepHours
	if in.SleepHours != nil {
		hours = *in.SleepHours
	} else {
		defaulted = append(defaulted, "sleep_hours")
	}
	quality := NeutralSleepQuality
	if in.SleepQuality != nil {
		quality = *in.SleepQuality
	} else {
		defaulted = append(defaulted, "sleep_quality")
	}
	stress := NeutralStress
	if in.StressLevel != nil {
		stress = *in.StressLevel
	} else {
		defaulted = append(defaulted, "stress_level")
	}
	nutrition := NeutralNutrition
	if in.NutritionRating != nil {
		nutrition = *in.NutritionRating
	} else {
		defaulted = append(defaulted, "nutrition_rating")
	}
	days := NeutralDaysSince
	if in.DaysSinceLastSession != nil {
		days = *in.DaysSinceLastSession
	} else {
		defaulted = append(defaulted, "days_since_last_session")
	}
	rpe := NeutralPreviousRPE
	if in.PreviousSessionRPE != nil {
		rpe = *in.PreviousSessionRPE
	} else {
		defaulted = append(defaulted, "previous_session_rpe")
	}

	c := Components{
		Sleep:     sleepWeight * sleepDurationFactor(hours) * sleepQualityMultiplier(quality),
		Stress:    stressWeight * float64(5-clampInt(stress, 1, 5)) / 4,
		Nutrition: nutritionWeight * float64(clampInt(nutrition, 1, 5)-1) / 4,
		Rest:      restWeight * (1 - 0.8*math.Exp(-0.9*float64(max(days, 0)))),
		Effort:    rpeWeight * clamp((10-rpe)/5, 0, 1),
	}
	total := clamp(c.Sleep+c.Stress+c.Nutrition+c.Rest+c.Effort, 0, 100)
	total = math.Round(total*10) / 10

	interp := Interpret(total)
	return Score{
		Score:          total,
		Tier:           interp.Tier,
		Recommendation: interp.Recommendation,
		Components:     round1(c),
		Defaulted:      defaulted,
	}
}

// sleepDurationFactor rises through 7-9 hours and peaks at 9. It eases off
// to 10 hours and falls faster past that.
func sleepDurationFactor(h float64) float64 {
	switch {
	case h <= 0:
		return 0
	case h < 6:
		return 0.6 * h / 6
	case h < 7:
		return 0.6 + 0.3*(h-6)
	case h <= 9:
		return 0.9 + 0.05*(h-7)
	case h <= 10:
		return 1 - 0.05*(h-9)
	default:
		return math.Max(0.5, 0.95-0.15*(h-10))
	}
}

// sleepQualityMultiplier maps quality 1-5 onto 0.8-1.2.
func sleepQualityMultiplier(q int) float64 {
	return 0.8 + 0.1*float64(clampInt(q, 1, 5)-1)
}

func round1(c Components) Components {
	r := func(v float64) float64 { return math.Round(v*10) / 10 }
	return Components{
		Sleep:     r(c.Sleep),
		Stress:    r(c.Stress),
		Nutrition: r(c.Nutrition),
		Rest:      r(c.Rest),
		Effort:    r(c.Effort),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
