package strength

import "github.com/claude/repcoach/internal/models"

// WarmUpSet is one ramp set before the working sets.
type WarmUpSet struct {
	WeightKg float64 `json:"weight_kg"`
	Reps     int     `json:"reps"`
	Percent  int     `json:"percent"`
}

type ramp struct {
	pct  float64
	reps int
}

var (
	compoundLightRamps  = []ramp{{0.50, 8}}
	compoundMediumRamps = []ramp{{0.40, 8}, {0.60, 5}, {0.80, 3}}
	compoundHeavyRamps  = []ramp{{0.40, 8}, {0.55, 5}, {0.70, 3}, {0.85, 1}}
	isolationLightRamps = []ramp{{0.50, 10}}
	isolationRamps      = []ramp{{0.50, 10}, {0.75, 6}}
)

// WarmUpLadder builds ramp sets for a working weight. Heavier compounds get
// more ramps; isolation work gets at most two. Ramps that round to zero or to
// the working weight are dropped, as are duplicates.
func WarmUpLadder(workingKg float64, mechanic models.Mechanic, incrementKg float64) []WarmUpSet {
	if workingKg <= 0 {
		return nil
	}
	if incrementKg <= 0 {
		incrementKg = models.DefaultMinIncrementKg
	}

	var ramps []ramp
	switch {
	case mechanic == models.MechanicIsolation && workingKg < 30:
		ramps = isolationLightRamps
	case mechanic == models.MechanicIsolation:
		ramps = isolationRamps
	case workingKg < 40:
		ramps = compoundLightRamps
	case workingKg <= 100:
		ramps = compoundMediumRamps
	default:
		ramps = compoundHeavyRamps
	}

	out := make([]WarmUpSet, 0, len(ramps))
	var last float64
	for _, r := range ramps {
		w := models.RoundToIncrement(workingKg*r.pct, incrementKg)
		if w <= 0 || w >= workingKg || w == last {
			continue
		}
		out = append(out, WarmUpSet{WeightKg: w, Reps: r.reps, Percent: int(r.pct * 100)})
		last = w
	}
	return out
}
