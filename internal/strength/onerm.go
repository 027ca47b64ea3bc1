package strength

import "math"

// Rep counts above this use the linear model alone.
const blendMaxReps = 12.0

// Estimate1RM estimates a one-rep max from a set. When rpe is supplied the
// reps left in reserve (10 - RPE) are added to the performed reps first, so
// RPE 10 and a nil RPE give the same answer.
func Estimate1RM(weight float64, reps int, rpe *float64) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	eff := float64(reps)
	if rpe != nil {
		r := math.Max(1, math.Min(10, *rpe))
		eff += 10 - r
	}
	return round2(weight * RepFactor(eff))
}

// RepFactor is the ratio of 1RM to the weight that can be lifted for reps.
// Up to 12 reps it blends Brzycki (weighted toward low reps) with Epley
// (weighted toward mid reps); above 12 it is Epley alone.
func RepFactor(reps float64) float64 {
	if reps <= 1 {
		return 1
	}
	if reps > blendMaxReps {
		return epley(reps)
	}
	wB := 0.7 - 0.4*(reps-1)/(blendMaxReps-1)
	return wB*brzycki(reps) + (1-wB)*epley(reps)
}

// WeightForReps returns the load that should leave rir reps in reserve at the
// given rep target.
func WeightForReps(oneRepMax float64, reps, rir int) float64 {
	if oneRepMax <= 0 || reps <= 0 {
		return 0
	}
	if rir < 0 {
		rir = 0
	}
	return oneRepMax / RepFactor(float64(reps+rir))
}

// brzycki: 1RM = w * 36 / (37 - reps)
func brzycki(reps float64) float64 {
	if reps >= 36 {
		reps = 36
	}
	return 36 / (37 - reps)
}

// epley: 1RM = w * (1 + reps/30)
func epley(reps float64) float64 {
	return 1 + reps/30
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
