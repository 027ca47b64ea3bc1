package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/readiness"
)

// Readiness scores a check-in. Missing sleep hours are backfilled from the
// last stored sleep session and missing rest days from the mesocycle's last
// logged session; anything still missing uses the neutral default.
func (s *Service) Readiness(ctx context.Context, userID int, in readiness.Input) readiness.Score {
	now := s.now()
	if in.SleepHours == nil {
		sleep, err := s.data.LastSleepSession(ctx, userID, now)
		switch {
		case err != nil:
			s.log.Warn("sleep backfill failed", "user_id", userID, "error", err)
		case sleep != nil && now.Sub(sleep.Date) <= 36*time.Hour && sleep.TotalSleep > 0:
			h := sleep.TotalSleep
			in.SleepHours = &h
		}
	}
	if in.DaysSinceLastSession == nil {
		meso, err := s.data.Mesocycle(ctx, userID)
		if err != nil {
			s.log.Warn("rest-day backfill failed", "user_id", userID, "error", err)
		} else if meso != nil {
			if d := meso.DaysSinceLastSession(now); d >= 0 {
				in.DaysSinceLastSession = &d
			}
		}
	}
	return readiness.CalculateScore(in)
}

// StartMesocycle begins a new training block with zero fatigue. A deload
// week of 0 uses the default.
func (s *Service) StartMesocycle(ctx context.Context, userID, deloadWeek int) (models.MesocycleState, error) {
	m := models.NewMesocycle(userID, s.now())
	if deloadWeek > 0 {
		m.DeloadWeek = deloadWeek
	}
	if err := s.data.SaveMesocycle(ctx, m); err != nil {
		return models.MesocycleState{}, err
	}
	return m, nil
}

// RecordSession folds a finished session's RPE into the block's fatigue.
// The rest since the previous session decays fatigue first. A user with no
// block gets one started at the session.
func (s *Service) RecordSession(ctx context.Context, userID int, sessionRPE float64, at time.Time) (models.MesocycleState, error) {
	if sessionRPE < 0 || sessionRPE > 10 {
		return models.MesocycleState{}, fmt.Errorf("%w: session RPE must be 0-10, got %.1f", ErrInvalidRequest, sessionRPE)
	}
	if at.IsZero() {
		at = s.now()
	}
	m, err := s.mesocycle(ctx, userID, at)
	if err != nil {
		return models.MesocycleState{}, err
	}
	days := max(m.DaysSinceLastSession(at), 0)
	m.Fatigue = readiness.UpdateMesocycleFatigue(m.Fatigue, sessionRPE, days, s.policy.Fatigue)
	m.LastSessionAt = &at
	m.UpdatedAt = s.now()
	if err := s.data.SaveMesocycle(ctx, m); err != nil {
		return models.MesocycleState{}, err
	}
	return m, nil
}

// CurrentFatigue is the stored fatigue decayed by the rest since the last
// session.
func (s *Service) CurrentFatigue(ctx context.Context, userID int) (float64, error) {
	now := s.now()
	m, err := s.mesocycle(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	return currentFatigue(m, now, s.policy.Fatigue), nil
}

// ForecastWeek projects end-of-week fatigue for a planned week.
func (s *Service) ForecastWeek(ctx context.Context, userID, plannedSessions int, avgRPE float64) (readiness.Forecast, error) {
	f, err := s.CurrentFatigue(ctx, userID)
	if err != nil {
		return readiness.Forecast{}, err
	}
	return readiness.ForecastWeeklyFatigue(f, plannedSessions, avgRPE, s.policy.Fatigue, s.policy.Forecast), nil
}

// CheckDeload evaluates the current block against the deload policy using
// logged session completion and effort since the block started.
func (s *Service) CheckDeload(ctx context.Context, userID int) (readiness.DeloadDecision, error) {
	now := s.now()
	m, err := s.mesocycle(ctx, userID, now)
	if err != nil {
		return readiness.DeloadDecision{}, err
	}
	stats, err := s.data.SessionStats(ctx, userID, m.StartedAt)
	if err != nil {
		return readiness.DeloadDecision{}, fmt.Errorf("loading session stats: %w", err)
	}
	return readiness.ShouldTriggerDeload(DeloadInput(m, stats, now, s.policy.Fatigue), s.policy.Deload), nil
}

// DeloadInput builds the deload check's view of a block.
func DeloadInput(m models.MesocycleState, stats []models.SessionStats, now time.Time, fm readiness.FatigueModel) readiness.DeloadInput {
	in := readiness.DeloadInput{
		CurrentWeek: m.Week(now),
		DeloadWeek:  m.DeloadWeek,
		Fatigue:     currentFatigue(m, now, fm),
	}
	for _, st := range stats {
		sum := readiness.SessionSummary{Date: st.Date, CompletionPct: st.CompletionPct()}
		if st.AvgRPE != nil {
			sum.AvgRPE = *st.AvgRPE
		}
		in.Sessions = append(in.Sessions, sum)
	}
	return in
}

func currentFatigue(m models.MesocycleState, now time.Time, fm readiness.FatigueModel) float64 {
	days := m.DaysSinceLastSession(now)
	if days <= 0 {
		return m.Fatigue
	}
	return readiness.FatigueAfterRest(m.Fatigue, days, fm)
}

// mesocycle loads the user's block, starting an unsaved one at start when
// none exists.
func (s *Service) mesocycle(ctx context.Context, userID int, start time.Time) (models.MesocycleState, error) {
	m, err := s.data.Mesocycle(ctx, userID)
	if err != nil {
		return models.MesocycleState{}, fmt.Errorf("loading mesocycle: %w", err)
	}
	if m == nil {
		return models.NewMesocycle(userID, start), nil
	}
	return *m, nil
}
