package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/injury"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/variety"
)

// ResolveWorkout maps exercise names or IDs to catalog entries. Unknown names
// become bare entries so the classifier can still judge them by name.
func (s *Service) ResolveWorkout(ctx context.Context, names []string) []models.ExerciseMetadata {
	out := make([]models.ExerciseMetadata, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if meta := s.lookupExercise(ctx, n); meta != nil {
			out = append(out, *meta)
			continue
		}
		out = append(out, models.ExerciseMetadata{Name: n})
	}
	return out
}

// AutoSwap repairs a workout against the whole catalog.
func (s *Service) AutoSwap(ctx context.Context, workout []models.ExerciseMetadata, injuries []models.InjuryContext) ([]injury.SwapResult, []models.ExerciseMetadata, error) {
	if err := injury.Validate(injuries); err != nil {
		return nil, nil, err
	}
	pool, err := s.data.Exercises(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading exercise catalog: %w", err)
	}
	results, err := injury.AutoSwap(workout, pool, injuries)
	if err != nil {
		return nil, nil, err
	}
	return results, injury.Apply(workout, results), nil
}

// Alternatives ranks safe replacements for one exercise from the catalog.
func (s *Service) Alternatives(ctx context.Context, exercise string, injuries []models.InjuryContext) ([]injury.Alternative, error) {
	if err := injury.Validate(injuries); err != nil {
		return nil, err
	}
	meta := s.lookupExercise(ctx, exercise)
	if meta == nil {
		return nil, fmt.Errorf("%w: exercise %q is not in the catalog", ErrInvalidRequest, exercise)
	}
	pool, err := s.data.ExercisesForMuscle(ctx, meta.PrimaryMuscle)
	if err != nil {
		return nil, fmt.Errorf("loading exercises for %s: %w", meta.PrimaryMuscle, err)
	}
	return injury.SafeAlternatives(*meta, pool, injuries)
}

// SelectExercises orders a muscle group's catalog pool for today: injury
// filtering first, then variety ordering over what is left.
func (s *Service) SelectExercises(ctx context.Context, userID int, muscle string, injuries []models.InjuryContext) (variety.Ranking, error) {
	muscle = strings.ToLower(strings.TrimSpace(muscle))
	if muscle == "" {
		return variety.Ranking{}, fmt.Errorf("%w: muscle group is required", ErrInvalidRequest)
	}
	pool, err := s.data.ExercisesForMuscle(ctx, muscle)
	if err != nil {
		return variety.Ranking{}, fmt.Errorf("loading exercises for %s: %w", muscle, err)
	}
	allowed, err := injury.Filter(pool, injuries)
	if err != nil {
		return variety.Ranking{}, err
	}
	return s.selector.Select(ctx, userID, muscle, allowed)
}

// RecordUsage stores which exercises a session used, stamping the user.
func (s *Service) RecordUsage(ctx context.Context, userID int, records []models.UsageRecord) error {
	for i := range records {
		records[i].UserID = userID
		if records[i].UsedAt.IsZero() {
			records[i].UsedAt = s.now()
		}
		if records[i].ExerciseID == "" {
			records[i].ExerciseID = strings.ToLower(strings.TrimSpace(records[i].ExerciseName))
		}
		if records[i].ExerciseID == "" || records[i].MuscleGroup == "" {
			return fmt.Errorf("%w: usage record %d needs an exercise and a muscle group", ErrInvalidRequest, i)
		}
	}
	return s.selector.RecordUsage(ctx, records)
}

// VarietyPreferences returns the user's rotation settings.
func (s *Service) VarietyPreferences(ctx context.Context, userID int) (models.VarietyPreferences, error) {
	return s.selector.Preferences(ctx, userID)
}

// SaveVarietyPreferences validates and stores rotation settings.
func (s *Service) SaveVarietyPreferences(ctx context.Context, userID int, p models.VarietyPreferences) (models.VarietyPreferences, error) {
	switch p.Level {
	case models.VarietyLow, models.VarietyMedium, models.VarietyHigh:
	case "":
		p.Level = models.VarietyMedium
	default:
		return models.VarietyPreferences{}, fmt.Errorf("%w: unknown variety level %q", ErrInvalidRequest, p.Level)
	}
	if p.MinPoolSize <= 0 {
		p.MinPoolSize = models.DefaultMinPoolSize
	}
	if err := s.selector.SavePreferences(ctx, userID, p); err != nil {
		return models.VarietyPreferences{}, err
	}
	return p, nil
}

// Catalog returns every exercise in the catalog.
func (s *Service) Catalog(ctx context.Context) ([]models.ExerciseMetadata, error) {
	return s.data.Exercises(ctx)
}
