package strength

import (
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// relatedLift maps a variation to the parent lift it is usually programmed
// against. Every token must appear in the canonical variation name, and the
// tokens always include the movement word so curls and crunches never match
// a pressing variation.
type relatedLift struct {
	tokens  []string
	pattern models.MovementPattern
	parent  string
	ratio   float64
}

// Ordered: more specific variations first.
var relatedLifts = []relatedLift{
	{[]string{"incline", "dumbbell", "press"}, models.PatternHorizontalPush, "bench press", 0.65},
	{[]string{"incline", "press"}, models.PatternHorizontalPush, "bench press", 0.80},
	{[]string{"decline", "press"}, models.PatternHorizontalPush, "bench press", 0.95},
	{[]string{"close", "grip", "bench"}, models.PatternHorizontalPush, "bench press", 0.90},
	{[]string{"dumbbell", "bench", "press"}, models.PatternHorizontalPush, "bench press", 0.75},
	{[]string{"floor", "press"}, models.PatternHorizontalPush, "bench press", 0.85},
	{[]string{"front", "squat"}, models.PatternSquat, "back squat", 0.80},
	{[]string{"box", "squat"}, models.PatternSquat, "back squat", 0.90},
	{[]string{"pause", "squat"}, models.PatternSquat, "back squat", 0.85},
	{[]string{"leg", "press"}, models.PatternSquat, "back squat", 1.50},
	{[]string{"romanian", "deadlift"}, models.PatternHinge, "deadlift", 0.70},
	{[]string{"stiff", "leg", "deadlift"}, models.PatternHinge, "deadlift", 0.65},
	{[]string{"sumo", "deadlift"}, models.PatternHinge, "deadlift", 1.00},
	{[]string{"trap", "bar", "deadlift"}, models.PatternHinge, "deadlift", 1.05},
	{[]string{"hip", "thrust"}, models.PatternHinge, "deadlift", 0.90},
	{[]string{"push", "press"}, models.PatternVerticalPush, "overhead press", 1.25},
	{[]string{"dumbbell", "shoulder", "press"}, models.PatternVerticalPush, "overhead press", 0.75},
	{[]string{"seated", "overhead", "press"}, models.PatternVerticalPush, "overhead press", 0.90},
	{[]string{"pendlay", "row"}, models.PatternHorizontalPull, "row", 0.90},
	{[]string{"cable", "row"}, models.PatternHorizontalPull, "row", 0.90},
	{[]string{"machine", "row"}, models.PatternHorizontalPull, "row", 0.90},
	{[]string{"pull", "up"}, models.PatternVerticalPull, "lat pulldown", 1.00},
}

// relatedParent returns the parent lift and ratio for a variation, or false.
// When catalog metadata is known its movement pattern must match the parent's.
func relatedParent(canonical string, meta *models.ExerciseMetadata) (string, float64, bool) {
	for _, r := range relatedLifts {
		if r.parent == canonical {
			continue
		}
		if meta != nil && meta.Pattern != "" && meta.Pattern != r.pattern {
			continue
		}
		match := true
		for _, tok := range r.tokens {
			if !strings.Contains(canonical, tok) {
				match = false
				break
			}
		}
		if match {
			return r.parent, r.ratio, true
		}
	}
	return "", 0, false
}

// Intermediate 1RM as a multiple of lean body mass.
var leanMassStandards = map[string]float64{
	"bench press":          1.25,
	"back squat":           1.65,
	"deadlift":             2.00,
	"overhead press":       0.80,
	"row":                  1.05,
	"front squat":          1.30,
	"romanian deadlift":    1.40,
	"incline bench press":  1.00,
	"dumbbell bench press": 0.95,
	"leg press":            2.60,
	"lat pulldown":         0.95,
	"hip thrust":           1.90,
}

var experienceFactors = map[models.Experience]float64{
	models.ExperienceBeginner:     0.55,
	models.ExperienceNovice:       0.75,
	models.ExperienceIntermediate: 1.00,
	models.ExperienceAdvanced:     1.30,
}

// Population estimates are shaded down so a first session errs light.
const standardsConservativeFactor = 0.9

// standardOneRepMax estimates a 1RM from lean mass and experience. It
// returns false when the lift has no standard or lean mass is unknown.
func standardOneRepMax(canonical string, comp models.BodyComposition, exp models.Experience) (float64, bool) {
	mult, ok := leanMassStandards[canonical]
	if !ok {
		return 0, false
	}
	lean := comp.LeanMassKg
	if lean <= 0 && comp.MassKg > 0 {
		lean = comp.MassKg * 0.8
	}
	if lean <= 0 {
		return 0, false
	}
	factor, ok := experienceFactors[exp]
	if !ok {
		factor = experienceFactors[models.ExperienceBeginner]
	}
	return lean * mult * factor * standardsConservativeFactor, true
}

// isKnownCompound reports whether a canonical name is one of the lifts the
// reference tables know about.
func isKnownCompound(canonical string) bool {
	if _, ok := leanMassStandards[canonical]; ok {
		return true
	}
	_, _, ok := relatedParent(canonical, nil)
	return ok
}
