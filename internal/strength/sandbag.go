package strength

import (
	"fmt"
	"math"

	"github.com/claude/repcoach/internal/models"
)

// SandbagResult reports whether logged sets look too easy for the load.
type SandbagResult struct {
	Detected        bool    `json:"detected"`
	ActualDropoff   float64 `json:"actual_dropoff"`
	ExpectedDropoff float64 `json:"expected_dropoff"`
	SuggestedAddKg  float64 `json:"suggested_add_kg,omitempty"`
	Message         string  `json:"message"`
}

// DetectSandbagging compares rep dropoff from the first to the last completed
// set against the category's expected dropoff. It needs at least three
// completed sets at one weight and flags when the actual dropoff is under
// half the expected one.
func DetectSandbagging(sets []models.SetEntry, cat Category) SandbagResult {
	var done []models.SetEntry
	for _, s := range sets {
		if s.Completed && s.Reps > 0 && s.WeightKg > 0 {
			done = append(done, s)
		}
	}
	if len(done) < 3 {
		return SandbagResult{Message: "not enough completed sets to judge effort"}
	}
	w := done[0].WeightKg
	for _, s := range done[1:] {
		if math.Abs(s.WeightKg-w) > 1e-6 {
			return SandbagResult{Message: "weight changed between sets"}
		}
	}

	first := float64(done[0].Reps)
	last := float64(done[len(done)-1].Reps)
	actual := math.Max(0, (first-last)/first)
	expected := 1 - Retention(cat, len(done))

	res := SandbagResult{
		ActualDropoff:   math.Round(actual*1000) / 1000,
		ExpectedDropoff: math.Round(expected*1000) / 1000,
	}
	if actual < 0.5*expected {
		inc, ok := sandbagIncrementKg[cat]
		if !ok {
			inc = sandbagIncrementKg[CategoryCompoundAccessory]
		}
		res.Detected = true
		res.SuggestedAddKg = inc
		res.Message = fmt.Sprintf("reps barely dropped across %d sets at %.1f kg; add %.2g kg next time", len(done), w, inc)
		return res
	}
	res.Message = "rep dropoff matches the load"
	return res
}
