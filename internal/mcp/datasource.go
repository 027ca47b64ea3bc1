package mcp

import (
	"context"
	"strings"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/injury"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/claude/repcoach/internal/variety"
)

// DataSource abstracts the coaching layer for MCP tools. Local (in-process
// coach.Service) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	Profile(ctx context.Context, userID int) (models.StrengthProfile, error)
	Exercises(ctx context.Context, muscle string) ([]models.ExerciseMetadata, error)
	PlanExercise(ctx context.Context, userID int, req coach.PlanRequest) (coach.Plan, error)
	Readiness(ctx context.Context, userID int, in readiness.Input) (readiness.Score, error)
	CheckDeload(ctx context.Context, userID int) (readiness.DeloadDecision, error)
	ForecastWeek(ctx context.Context, userID, plannedSessions int, avgRPE float64) (readiness.Forecast, error)
	AutoSwap(ctx context.Context, exercises []string, injuries []models.InjuryContext) (SwapOutcome, error)
	SelectExercises(ctx context.Context, userID int, muscle string, injuries []models.InjuryContext) (variety.Ranking, error)
	LogDiscomfort(ctx context.Context, userID int, ev models.DiscomfortEvent) (discomfort.Outcome, error)
	DiscomfortPatterns(ctx context.Context, userID int) ([]discomfort.Pattern, error)
}

// SwapOutcome is a repaired workout and the per-slot decisions behind it.
type SwapOutcome struct {
	Results []injury.SwapResult       `json:"results"`
	Workout []models.ExerciseMetadata `json:"workout"`
}

// Local serves MCP tools from an in-process coach.Service.
type Local struct {
	*coach.Service
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) Readiness(ctx context.Context, userID int, in readiness.Input) (readiness.Score, error) {
	return l.Service.Readiness(ctx, userID, in), nil
}

// Exercises lists the catalog, narrowed to one primary muscle when given.
func (l Local) Exercises(ctx context.Context, muscle string) ([]models.ExerciseMetadata, error) {
	all, err := l.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	muscle = strings.ToLower(strings.TrimSpace(muscle))
	if muscle == "" {
		return all, nil
	}
	var out []models.ExerciseMetadata
	for _, ex := range all {
		if ex.PrimaryMuscle == muscle {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (l Local) AutoSwap(ctx context.Context, exercises []string, injuries []models.InjuryContext) (SwapOutcome, error) {
	workout := l.ResolveWorkout(ctx, exercises)
	results, repaired, err := l.Service.AutoSwap(ctx, workout, injuries)
	if err != nil {
		return SwapOutcome{}, err
	}
	if results == nil {
		results = []injury.SwapResult{}
	}
	return SwapOutcome{Results: results, Workout: repaired}, nil
}
