package readiness

import (
	"fmt"

	"github.com/claude/repcoach/internal/models"
)

// MaxRIR is the most conservative reps-in-reserve target.
const MaxRIR = 4

// AdjustTargets scales planned targets by today's readiness score.
//
//	>= 80  unchanged
//	60-79  +1 RIR, +30s rest
//	40-59  +1 RIR, +60s rest, -10% weight, one set fewer
//	< 40   -20% weight, at most 2 sets, RIR 4, +90s rest, technique session
//
// Reduced weights are floored to minIncrementKg.
func AdjustTargets(base models.ProgressionTargets, score, minIncrementKg float64) models.ProgressionTargets {
	if minIncrementKg <= 0 {
		minIncrementKg = models.DefaultMinIncrementKg
	}
	out := base
	var note string

	switch {
	case score >= 80:
		note = fmt.Sprintf("High readiness (%.0f): train as planned", score)
	case score >= 60:
		out.TargetRIR = min(base.TargetRIR+1, MaxRIR)
		out.RestSeconds = base.RestSeconds + 30
		note = fmt.Sprintf("Moderate readiness (%.0f): one more rep in reserve and 30s extra rest", score)
	case score >= 40:
		out.TargetRIR = min(base.TargetRIR+1, MaxRIR)
		out.RestSeconds = base.RestSeconds + 60
		out.WeightKg = reduce(base.WeightKg, 0.9, minIncrementKg)
		if base.Sets > 1 {
			out.Sets = base.Sets - 1
		}
		note = fmt.Sprintf("Low readiness (%.0f): weight down 10%%, one set fewer, 60s extra rest", score)
	default:
		out.WeightKg = reduce(base.WeightKg, 0.8, minIncrementKg)
		if base.Sets > 2 {
			out.Sets = 2
		}
		out.TargetRIR = MaxRIR
		out.RestSeconds = base.RestSeconds + 90
		out.ProgressionType = models.ProgressionTechnique
		note = fmt.Sprintf("Very low readiness (%.0f): light technique session, weight down 20%%, 2 sets max", score)
	}

	if base.Rationale != "" {
		out.Rationale = note + ". " + base.Rationale
	} else {
		out.Rationale = note
	}
	return out
}

// reduce scales w and floors it to the increment. Loads too small to drop a
// full increment stay as they are.
func reduce(w, factor, inc float64) float64 {
	if w <= 0 {
		return w
	}
	r := models.FloorToIncrement(w*factor, inc)
	if r <= 0 {
		return w
	}
	return r
}
