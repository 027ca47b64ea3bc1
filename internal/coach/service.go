// Package coach loads a user's data, assembles the strength profile and runs
// the recommendation engines in order: strength estimation, readiness
// adjustment, injury filtering and variety ordering.
package coach

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
	"github.com/claude/repcoach/internal/strength"
	"github.com/claude/repcoach/internal/variety"
)

// ErrInvalidRequest marks a request the caller must fix.
var ErrInvalidRequest = errors.New("invalid request")

// DataSource is the persistence the service reads and writes through.
// *storage.DB satisfies it.
type DataSource interface {
	GetUser(ctx context.Context, userID int) (*models.UserRow, error)
	LatestBodyComposition(ctx context.Context, userID int) (*models.BodyCompositionRow, error)
	ExerciseHistory(ctx context.Context, userID int, since, now time.Time) ([]models.ExerciseHistoryEntry, error)
	EstimatedMaxes(ctx context.Context, userID int) ([]models.EstimatedMax, error)
	UpsertEstimatedMaxes(ctx context.Context, userID int, maxes []models.EstimatedMax) (int64, error)

	Exercises(ctx context.Context) ([]models.ExerciseMetadata, error)
	ExercisesForMuscle(ctx context.Context, muscle string) ([]models.ExerciseMetadata, error)
	ExerciseByName(ctx context.Context, name string) (*models.ExerciseMetadata, error)

	LastSleepSession(ctx context.Context, userID int, onOrBefore time.Time) (*models.SleepSessionRow, error)
	SessionStats(ctx context.Context, userID int, since time.Time) ([]models.SessionStats, error)
	Mesocycle(ctx context.Context, userID int) (*models.MesocycleState, error)
	SaveMesocycle(ctx context.Context, m models.MesocycleState) error

	InsertDiscomfort(ctx context.Context, ev models.DiscomfortEvent) error
	DiscomfortSince(ctx context.Context, userID int, since time.Time) ([]models.DiscomfortEvent, error)
}

// Policy bundles the tunable thresholds of every engine.
type Policy struct {
	Strength         strength.Policy
	Fatigue          readiness.FatigueModel
	Deload           readiness.DeloadPolicy
	Forecast         readiness.ForecastBands
	DiscomfortWindow time.Duration
}

// DefaultPolicy returns each engine's defaults.
func DefaultPolicy() Policy {
	return Policy{
		Strength:         strength.DefaultPolicy(),
		Fatigue:          readiness.DefaultFatigueModel(),
		Deload:           readiness.DefaultDeloadPolicy(),
		Forecast:         readiness.DefaultForecastBands(),
		DiscomfortWindow: discomfort.DefaultWindow,
	}
}

// Service answers coaching questions for one user at a time.
type Service struct {
	data     DataSource
	selector *variety.Selector
	detector *discomfort.Detector
	policy   Policy
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Service. The selector must read through the same store as
// data; the detector's window is set from the policy.
func New(data DataSource, selector *variety.Selector, detector *discomfort.Detector, policy Policy, log *slog.Logger) *Service {
	if detector == nil {
		detector = discomfort.NewDetector(nil)
	}
	if policy.DiscomfortWindow > 0 {
		detector.Window = policy.DiscomfortWindow
	}
	return &Service{
		data:     data,
		selector: selector,
		detector: detector,
		policy:   policy,
		log:      log,
		now:      time.Now,
	}
}

// Policy returns the thresholds the service runs with.
func (s *Service) Policy() Policy { return s.policy }
