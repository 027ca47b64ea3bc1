package injury

import "github.com/claude/repcoach/internal/models"

// Filter drops exercises that any injury marks avoid. Once any injury is
// severe, caution exercises are dropped too.
func Filter(exercises []models.ExerciseMetadata, injuries []models.InjuryContext) ([]models.ExerciseMetadata, error) {
	if err := Validate(injuries); err != nil {
		return nil, err
	}
	strict := hasSevere(injuries)
	out := make([]models.ExerciseMetadata, 0, len(exercises))
	for _, ex := range exercises {
		if allowed(Assess(ex, injuries), strict) {
			out = append(out, ex)
		}
	}
	return out, nil
}

func allowed(l Level, strict bool) bool {
	switch l {
	case Avoid:
		return false
	case Caution:
		return !strict
	}
	return true
}
