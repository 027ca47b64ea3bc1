package strength

import (
	"fmt"
	"math"

	"github.com/claude/repcoach/internal/models"
)

const (
	asymmetryThreshold = 0.03
	asymmetryCap       = 0.15
)

// Asymmetry is a per-side weight bias for unilateral work. The zero value
// means no adjustment.
type Asymmetry struct {
	WeakerSide     string  `json:"weaker_side,omitempty"`
	AsymmetryPct   float64 `json:"asymmetry_pct"`
	WeakerSideKg   float64 `json:"weaker_side_kg,omitempty"`
	StrongerSideKg float64 `json:"stronger_side_kg,omitempty"`
	Note           string  `json:"note,omitempty"`
}

// IsZero reports whether no adjustment applies.
func (a Asymmetry) IsZero() bool { return a.WeakerSide == "" }

// AsymmetryAdjustment lowers the weaker side's load by the lean-mass
// asymmetry of the limbs the exercise trains. Bilateral exercises, missing
// regional data and asymmetries under 3% return the zero value.
func AsymmetryAdjustment(ex models.ExerciseMetadata, regional *models.RegionalComposition, weightKg, incrementKg float64) Asymmetry {
	if regional == nil || weightKg <= 0 || !ex.IsUnilateral() {
		return Asymmetry{}
	}
	left, right := regional.LeftLegLeanKg, regional.RightLegLeanKg
	limb := "leg"
	if models.IsUpperBodyMuscle(ex.PrimaryMuscle) {
		left, right = regional.LeftArmLeanKg, regional.RightArmLeanKg
		limb = "arm"
	}
	if left <= 0 || right <= 0 {
		return Asymmetry{}
	}
	strong := math.Max(left, right)
	asym := (strong - math.Min(left, right)) / strong
	if asym < asymmetryThreshold {
		return Asymmetry{}
	}
	asym = math.Min(asym, asymmetryCap)

	side := "left"
	if right < left {
		side = "right"
	}
	if incrementKg <= 0 {
		incrementKg = 1
	}
	weak := models.FloorToIncrement(weightKg*(1-asym), incrementKg)
	pct := math.Round(asym*1000) / 10
	return Asymmetry{
		WeakerSide:     side,
		AsymmetryPct:   pct,
		WeakerSideKg:   weak,
		StrongerSideKg: weightKg,
		Note: fmt.Sprintf("%s %s has %.1f%% less lean mass; start that side at %.1f kg and match reps, not load",
			side, limb, pct, weak),
	}
}
