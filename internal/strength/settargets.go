package strength

import (
	"fmt"
	"math"

	"github.com/claude/repcoach/internal/models"
)

// Category controls how fast reps fall off across sets.
type Category string

const (
	CategoryIsolation         Category = "isolation"
	CategoryCompoundAccessory Category = "compound_accessory"
	CategoryCompoundPrimary   Category = "compound_primary"
)

// Rep retention expected by the fifth working set.
var retentionAtSetFive = map[Category]float64{
	CategoryIsolation:         0.72,
	CategoryCompoundAccessory: 0.80,
	CategoryCompoundPrimary:   0.88,
}

// Increment suggested when sandbagging is detected.
var sandbagIncrementKg = map[Category]float64{
	CategoryIsolation:         1.25,
	CategoryCompoundAccessory: 2.5,
	CategoryCompoundPrimary:   5,
}

// CategoryFor classifies an exercise from its catalog metadata. Free-weight
// squat, hinge and press patterns are primary; other compounds are accessory.
func CategoryFor(ex models.ExerciseMetadata) Category {
	if ex.Mechanic == models.MechanicIsolation || ex.Pattern == models.PatternIsolation {
		return CategoryIsolation
	}
	switch ex.Pattern {
	case models.PatternSquat, models.PatternHinge, models.PatternHorizontalPush, models.PatternVerticalPush:
		if ex.Equipment == models.EquipmentBarbell {
			return CategoryCompoundPrimary
		}
	}
	return CategoryCompoundAccessory
}

// Retention returns the fraction of set-one reps expected on the given set
// (1-based). It declines linearly through set five and keeps going after.
func Retention(cat Category, set int) float64 {
	r5, ok := retentionAtSetFive[cat]
	if !ok {
		r5 = retentionAtSetFive[CategoryCompoundAccessory]
	}
	if set <= 1 {
		return 1
	}
	return math.Max(0.3, 1-(1-r5)*float64(set-1)/4)
}

// SetTarget is the fatigue-adjusted goal for one working set.
type SetTarget struct {
	Set         int             `json:"set"`
	RepRange    models.RepRange `json:"rep_range"`
	ExpectedRPE float64         `json:"expected_rpe"`
	Note        string          `json:"note,omitempty"`
}

// SetTargets spreads a rep range over sets. The top of the range shrinks with
// the category's retention curve (never below the bottom) and expected RPE
// climbs from the RIR-implied RPE of set one toward 10.
func SetTargets(sets int, rr models.RepRange, rir int, cat Category) ([]SetTarget, error) {
	if sets <= 0 {
		return nil, fmt.Errorf("set count must be positive, got %d", sets)
	}
	if !rr.Valid() {
		return nil, fmt.Errorf("invalid rep range %d-%d", rr.Min, rr.Max)
	}
	if rir < 0 {
		rir = 0
	}
	base := math.Max(1, float64(10-rir))
	r5, ok := retentionAtSetFive[cat]
	if !ok {
		r5 = retentionAtSetFive[CategoryCompoundAccessory]
	}
	step := (1 - r5) / 4 * 10

	out := make([]SetTarget, 0, sets)
	for i := 1; i <= sets; i++ {
		top := int(math.Round(float64(rr.Max) * Retention(cat, i)))
		if top < rr.Min {
			top = rr.Min
		}
		rpe := math.Min(10, base+step*float64(i-1))
		t := SetTarget{
			Set:         i,
			RepRange:    models.RepRange{Min: rr.Min, Max: top},
			ExpectedRPE: math.Round(rpe*2) / 2,
		}
		if i == 1 {
			t.Note = "freshest set; aim for the top of the range"
		} else if top == rr.Min {
			t.Note = "hitting the bottom of the range is on target"
		}
		out = append(out, t)
	}
	return out, nil
}
