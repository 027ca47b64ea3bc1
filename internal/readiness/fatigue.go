package readiness

import "math"

// FatigueModel sets how fast the mesocycle accumulator rises and falls.
type FatigueModel struct {
	AccumulationPerRPE float64 `yaml:"accumulation_per_rpe" json:"accumulation_per_rpe"`
	DecayPerRestDay    float64 `yaml:"decay_per_rest_day" json:"decay_per_rest_day"`
}

// DefaultFatigueModel adds 2.5 points per RPE point and sheds 8 per rest day.
func DefaultFatigueModel() FatigueModel {
	return FatigueModel{AccumulationPerRPE: 2.5, DecayPerRestDay: 8}
}

func (m FatigueModel) orDefault() FatigueModel {
	d := DefaultFatigueModel()
	if m.AccumulationPerRPE <= 0 {
		m.AccumulationPerRPE = d.AccumulationPerRPE
	}
	if m.DecayPerRestDay <= 0 {
		m.DecayPerRestDay = d.DecayPerRestDay
	}
	return m
}

// UpdateMesocycleFatigue applies the rest since the previous session and then
// adds this session's load. The result is clamped to [0,100].
func UpdateMesocycleFatigue(current, sessionRPE float64, daysSinceLastSession int, m FatigueModel) float64 {
	m = m.orDefault()
	f := decay(current, float64(max(daysSinceLastSession, 0)), m)
	rpe := clamp(sessionRPE, 0, 10)
	return round1f(clamp(f+rpe*m.AccumulationPerRPE, 0, 100))
}

// FatigueAfterRest is pure decay, floored at 0.
func FatigueAfterRest(fatigue float64, restDays int, m FatigueModel) float64 {
	return round1f(decay(fatigue, float64(max(restDays, 0)), m.orDefault()))
}

func decay(f, days float64, m FatigueModel) float64 {
	return clamp(clamp(f, 0, 100)-m.DecayPerRestDay*days, 0, 100)
}

func round1f(v float64) float64 {
	return math.Round(v*10) / 10
}
