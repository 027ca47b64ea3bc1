package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/strength"
)

// Profile assembles a fresh strength profile. History is required; the user
// row, body composition and stored maxes are optional and a failed lookup is
// logged and treated as missing.
func (s *Service) Profile(ctx context.Context, userID int) (models.StrengthProfile, error) {
	now := s.now()
	p := models.StrengthProfile{Experience: models.ExperienceBeginner}

	user, err := s.data.GetUser(ctx, userID)
	if err != nil {
		s.log.Warn("loading user failed, using beginner defaults", "user_id", userID, "error", err)
	} else if user != nil {
		if user.Experience != "" {
			p.Experience = user.Experience
		}
		p.TrainingAgeMonths = user.TrainingAgeMonths
	}

	comp, err := s.data.LatestBodyComposition(ctx, userID)
	if err != nil {
		s.log.Warn("loading body composition failed", "user_id", userID, "error", err)
	} else if comp != nil {
		p.Composition = models.NewBodyComposition(comp.MassKg, comp.BodyFatPct, comp.HeightCm)
		p.Regional = comp.Regional()
	}

	window := s.policy.Strength.HistoryWindow
	if window <= 0 {
		window = strength.DefaultPolicy().HistoryWindow
	}
	history, err := s.data.ExerciseHistory(ctx, userID, now.Add(-window), now)
	if err != nil {
		return models.StrengthProfile{}, fmt.Errorf("loading exercise history: %w", err)
	}
	p.History = history

	maxes, err := s.data.EstimatedMaxes(ctx, userID)
	if err != nil {
		s.log.Warn("loading estimated maxes failed", "user_id", userID, "error", err)
	} else {
		p.KnownMaxes = maxes
	}
	return p, nil
}

// RecordTestedMax stores a directly tested one-rep max at high confidence.
func (s *Service) RecordTestedMax(ctx context.Context, userID int, exercise string, oneRepMaxKg float64, testedAt time.Time) (models.EstimatedMax, error) {
	if oneRepMaxKg <= 0 {
		return models.EstimatedMax{}, fmt.Errorf("tested max must be positive, got %.1f", oneRepMaxKg)
	}
	if testedAt.IsZero() {
		testedAt = s.now()
	}
	m := models.EstimatedMax{
		ExerciseName: exercise,
		OneRepMax:    oneRepMaxKg,
		Confidence:   models.ConfidenceHigh,
		Provenance:   models.ProvenanceDirect,
		UpdatedAt:    testedAt,
	}
	if _, err := s.data.UpsertEstimatedMaxes(ctx, userID, []models.EstimatedMax{m}); err != nil {
		return models.EstimatedMax{}, fmt.Errorf("storing tested max: %w", err)
	}
	return m, nil
}

// rememberEstimate stores a history-derived max so it can back related lifts
// and later sessions once the history ages out. It is dated by the session it
// came from, so its age keeps counting after the session leaves the window. It is capped at medium
// confidence so it never outranks fresh history, and never replaces a
// tested max.
func (s *Service) rememberEstimate(ctx context.Context, userID int, rec strength.Recommendation, known []models.EstimatedMax) {
	if rec.Source != strength.SourceHistory || rec.EstimatedMax <= 0 || rec.EvidenceDate == nil {
		return
	}
	canonical := strength.CanonicalName(rec.Exercise)
	for _, k := range known {
		if k.Provenance == models.ProvenanceDirect && strength.CanonicalName(k.ExerciseName) == canonical {
			return
		}
	}
	conf := rec.Confidence
	if conf == models.ConfidenceHigh {
		conf = models.ConfidenceMedium
	}
	m := models.EstimatedMax{
		ExerciseName: canonical,
		OneRepMax:    rec.EstimatedMax,
		Confidence:   conf,
		Provenance:   models.ProvenanceInferred,
		UpdatedAt:    *rec.EvidenceDate,
	}
	if _, err := s.data.UpsertEstimatedMaxes(ctx, userID, []models.EstimatedMax{m}); err != nil {
		s.log.Warn("storing estimated max failed", "user_id", userID, "exercise", m.ExerciseName, "error", err)
	}
}
