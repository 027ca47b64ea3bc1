package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/discomfort"
	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// LogDiscomfort stores a report and evaluates it against the user's recent
// reports. The event's ID and timestamp are filled in when missing.
func (s *Service) LogDiscomfort(ctx context.Context, userID int, ev models.DiscomfortEvent) (discomfort.Outcome, error) {
	if strings.TrimSpace(ev.BodyPart) == "" {
		return discomfort.Outcome{}, fmt.Errorf("%w: body part is required", ErrInvalidRequest)
	}
	if !ev.Level.Valid() {
		return discomfort.Outcome{}, fmt.Errorf("%w: unknown discomfort level %q", ErrInvalidRequest, ev.Level)
	}
	now := s.now()
	ev.UserID = userID
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.LoggedAt.IsZero() {
		ev.LoggedAt = now
	}

	history, err := s.data.DiscomfortSince(ctx, userID, now.Add(-s.detector.Window))
	if err != nil {
		return discomfort.Outcome{}, fmt.Errorf("loading discomfort history: %w", err)
	}
	if err := s.data.InsertDiscomfort(ctx, ev); err != nil {
		return discomfort.Outcome{}, err
	}
	out := s.detector.Evaluate(ev, history, now)
	if out.InjuryPrompt != nil {
		s.log.Info("recurring discomfort", "user_id", userID, "body_part", out.InjuryPrompt.BodyPart,
			"occurrences", out.InjuryPrompt.Occurrences)
	}
	return out, nil
}

// DiscomfortPatterns summarizes the user's reports over the trailing window.
func (s *Service) DiscomfortPatterns(ctx context.Context, userID int) ([]discomfort.Pattern, error) {
	now := s.now()
	events, err := s.data.DiscomfortSince(ctx, userID, now.Add(-s.detector.Window))
	if err != nil {
		return nil, fmt.Errorf("loading discomfort history: %w", err)
	}
	return discomfort.DetectPatterns(events, now, s.detector.Window), nil
}
