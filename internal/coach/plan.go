package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/injury"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/claude/repcoach/internal/strength"
)

// PlanRequest asks for today's prescription for one exercise.
type PlanRequest struct {
	Exercise       string                 `json:"exercise"`
	RepRange       models.RepRange        `json:"rep_range"`
	TargetRIR      int                    `json:"target_rir"`
	Sets           int                    `json:"sets"`
	MinIncrementKg float64                `json:"min_increment_kg,omitempty"`
	IncludeWarmUp  bool                   `json:"include_warm_up,omitempty"`
	Readiness      *readiness.Input       `json:"readiness,omitempty"`
	Injuries       []models.InjuryContext `json:"injuries,omitempty"`
}

// Plan is the prescription. Recommendation is nil when the exercise was
// removed for an injury with nothing safe to replace it.
type Plan struct {
	Exercise       string                     `json:"exercise"`
	Recommendation *strength.Recommendation   `json:"recommendation,omitempty"`
	Readiness      *readiness.Score           `json:"readiness,omitempty"`
	Targets        *models.ProgressionTargets `json:"targets,omitempty"`
	Swap           *injury.SwapResult         `json:"swap,omitempty"`
}

// Rest periods by exercise category, in seconds.
var restSeconds = map[strength.Category]int{
	strength.CategoryIsolation:         90,
	strength.CategoryCompoundAccessory: 120,
	strength.CategoryCompoundPrimary:   180,
}

// PlanExercise runs the pipeline for one exercise: an injured lift is swapped
// for a safe alternative first, the weight comes from the strength engine and
// the targets are scaled by readiness when a check-in is given.
func (s *Service) PlanExercise(ctx context.Context, userID int, req PlanRequest) (Plan, error) {
	name := strings.TrimSpace(req.Exercise)
	if name == "" {
		return Plan{}, fmt.Errorf("%w: exercise name is required", ErrInvalidRequest)
	}
	if err := injury.Validate(req.Injuries); err != nil {
		return Plan{}, err
	}
	plan := Plan{Exercise: name}

	meta := s.lookupExercise(ctx, name)
	if meta != nil && len(req.Injuries) > 0 {
		if _, needs := injury.NeedsSwap(*meta, req.Injuries); needs {
			pool, err := s.data.ExercisesForMuscle(ctx, meta.PrimaryMuscle)
			if err != nil {
				return Plan{}, fmt.Errorf("loading alternatives for %s: %w", meta.PrimaryMuscle, err)
			}
			swaps, err := injury.AutoSwap([]models.ExerciseMetadata{*meta}, pool, req.Injuries)
			if err != nil {
				return Plan{}, err
			}
			if len(swaps) > 0 {
				sw := swaps[0]
				plan.Swap = &sw
				if sw.Action == injury.ActionRemoved {
					return plan, nil
				}
				meta = sw.Replacement
				name = meta.Name
				plan.Exercise = name
			}
		}
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return Plan{}, err
	}
	est := strength.Estimator{Policy: s.policy.Strength}
	rec := est.Recommend(strength.Request{
		Exercise:       name,
		Metadata:       meta,
		RepRange:       req.RepRange,
		TargetRIR:      req.TargetRIR,
		Sets:           req.Sets,
		MinIncrementKg: req.MinIncrementKg,
		IncludeWarmUp:  req.IncludeWarmUp,
	}, profile, s.now())
	plan.Recommendation = &rec
	s.rememberEstimate(ctx, userID, rec, profile.KnownMaxes)

	if req.Readiness != nil && rec.HasWeight() {
		score := s.Readiness(ctx, userID, *req.Readiness)
		plan.Readiness = &score
		base := baseTargets(rec, req, meta)
		adjusted := readiness.AdjustTargets(base, score.Score, req.MinIncrementKg)
		plan.Targets = &adjusted
	}
	return plan, nil
}

func (s *Service) lookupExercise(ctx context.Context, name string) *models.ExerciseMetadata {
	meta, err := s.data.ExerciseByName(ctx, name)
	if err != nil {
		s.log.Warn("exercise lookup failed", "exercise", name, "error", err)
		return nil
	}
	return meta
}

func baseTargets(rec strength.Recommendation, req PlanRequest, meta *models.ExerciseMetadata) models.ProgressionTargets {
	rr := req.RepRange
	if !rr.Valid() && meta != nil && meta.RepRange.Valid() {
		rr = meta.RepRange
	}
	if !rr.Valid() {
		rr = models.RepRange{Min: 8, Max: 12}
	}
	sets := req.Sets
	if sets <= 0 {
		sets = 3
	}
	cat := strength.CategoryIsolation
	if meta != nil {
		cat = strength.CategoryFor(*meta)
	}
	return models.ProgressionTargets{
		WeightKg:        rec.WeightKg,
		RepRange:        rr,
		TargetRIR:       max(0, min(readiness.MaxRIR, req.TargetRIR)),
		Sets:            sets,
		RestSeconds:     restSeconds[cat],
		ProgressionType: models.ProgressionDouble,
		Rationale:       rec.Rationale,
	}
}
