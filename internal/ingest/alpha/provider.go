package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// sessionNamespace seeds deterministic session IDs so a re-import of the same
// session replaces it instead of duplicating it.
var sessionNamespace = uuid.MustParse("6f1c2a8e-3d4b-4e5f-9a0b-7c8d9e0f1a2b")

// Store is the persistence an import writes through. *storage.DB satisfies it.
type Store interface {
	DeleteSessionSets(ctx context.Context, userID int, sessionID uuid.UUID) error
	InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error)
	ExerciseByName(ctx context.Context, name string) (*models.ExerciseMetadata, error)
}

// UsageRecorder receives the exercise usage found in imported sessions.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, records []models.UsageRecord) error
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store Store
	usage UsageRecorder
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider. A nil usage
// recorder skips usage tracking.
func NewProvider(store Store, usage UsageRecorder, log *slog.Logger) *Provider {
	return &Provider{store: store, usage: usage, log: log}
}

// Ingest parses a CSV export, replaces the stored sets of every session it
// contains and records which catalog exercises each session used.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	var rows []models.WorkoutSetRow
	var usage []models.UsageRecord
	known := map[string]*models.ExerciseMetadata{}

	for _, s := range sessions {
		sid := SessionID(userID, s)
		if err := p.store.DeleteSessionSets(ctx, userID, sid); err != nil {
			return nil, fmt.Errorf("deleting existing sets for session %s: %w", s.Date.Format(time.DateOnly), err)
		}
		rows = append(rows, Rows(userID, s)...)

		for _, ex := range s.Exercises {
			meta, seen := known[ex.Name]
			if !seen {
				meta, err = p.store.ExerciseByName(ctx, ex.Name)
				if err != nil {
					p.log.Warn("catalog lookup failed", "exercise", ex.Name, "error", err)
				}
				known[ex.Name] = meta
				if meta == nil && !slices.Contains(result.UnknownExercises, ex.Name) {
					result.UnknownExercises = append(result.UnknownExercises, ex.Name)
				}
			}
			if meta == nil {
				continue
			}
			usage = append(usage, models.UsageRecord{
				UserID:       userID,
				SessionID:    sid,
				MuscleGroup:  meta.PrimaryMuscle,
				ExerciseID:   meta.Key(),
				ExerciseName: meta.Name,
				UsedAt:       s.Date,
			})
		}
	}

	result.SetsReceived = len(rows)
	if len(rows) > 0 {
		inserted, err := p.store.InsertWorkoutSets(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("inserting sets: %w", err)
		}
		result.SetsInserted = inserted
		result.SetsSkipped = int64(len(rows)) - inserted
	}

	if p.usage != nil && len(usage) > 0 {
		if err := p.usage.RecordUsage(ctx, usage); err != nil {
			p.log.Warn("recording imported usage failed", "user_id", userID, "error", err)
		} else {
			result.UsageRecorded = len(usage)
		}
	}

	p.log.Info("alpha import", "user_id", userID, "sessions", result.SessionsReceived,
		"sets", result.SetsInserted, "unknown_exercises", len(result.UnknownExercises))
	return result, nil
}

// SessionID derives a stable ID from the user, start time and session name.
func SessionID(userID int, s models.AlphaSession) uuid.UUID {
	key := strconv.Itoa(userID) + "|" + s.Date.Format(time.RFC3339) + "|" + s.Name
	return uuid.NewSHA1(sessionNamespace, []byte(key))
}

// Rows flattens a session into set rows. Every exported set was performed,
// so all are marked completed; RPE comes from the logged RIR.
func Rows(userID int, s models.AlphaSession) []models.WorkoutSetRow {
	sid := SessionID(userID, s)
	var rows []models.WorkoutSetRow
	for _, ex := range s.Exercises {
		equipment := string(models.ParseEquipment(ex.Equipment))
		if equipment == "" {
			equipment = ex.Equipment
		}
		for _, set := range ex.Sets {
			rows = append(rows, models.WorkoutSetRow{
				UserID:       userID,
				SessionID:    sid,
				SessionName:  s.Name,
				SessionDate:  s.Date,
				ExerciseName: ex.Name,
				Equipment:    equipment,
				TargetReps:   ex.TargetReps,
				IsWarmup:     set.IsWarmup,
				SetNumber:    set.Number,
				WeightKg:     set.WeightKg,
				Reps:         set.Reps,
				RPE:          set.RPE(),
				Completed:    true,
			})
		}
	}
	return rows
}
