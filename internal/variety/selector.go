package variety

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// DefaultLookback bounds how far back usage is loaded.
const DefaultLookback = 14 * 24 * time.Hour

// Store is the persistence the selector reads and writes through.
type Store interface {
	RecentUsage(ctx context.Context, userID int, muscle string, since time.Time) ([]models.UsageRecord, error)
	RecordUsage(ctx context.Context, records []models.UsageRecord) error
	VarietyPreferences(ctx context.Context, userID int) (models.VarietyPreferences, error)
	SaveVarietyPreferences(ctx context.Context, userID int, p models.VarietyPreferences) error
}

// Selector orders exercise pools using cached usage and preferences.
type Selector struct {
	store    Store
	cache    Cache
	lookback time.Duration
	now      func() time.Time

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewSelector creates a Selector. A nil cache disables caching and a nil rng
// uses the global source.
func NewSelector(store Store, cache Cache, lookback time.Duration, rng *rand.Rand) *Selector {
	if cache == nil {
		cache = NopCache{}
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Selector{store: store, cache: cache, lookback: lookback, now: time.Now, rng: rng}
}

// Preferences returns the user's settings, cached.
func (s *Selector) Preferences(ctx context.Context, userID int) (models.VarietyPreferences, error) {
	if p, ok := s.cache.Preferences(userID); ok {
		return p, nil
	}
	p, err := s.store.VarietyPreferences(ctx, userID)
	if err != nil {
		return models.VarietyPreferences{}, fmt.Errorf("loading variety preferences: %w", err)
	}
	s.cache.SetPreferences(userID, p)
	return p, nil
}

// SavePreferences persists settings and drops the user's cache.
func (s *Selector) SavePreferences(ctx context.Context, userID int, p models.VarietyPreferences) error {
	if err := s.store.SaveVarietyPreferences(ctx, userID, p); err != nil {
		return fmt.Errorf("saving variety preferences: %w", err)
	}
	s.cache.Invalidate(userID)
	return nil
}

// RecordUsage persists usage and drops the cache of every user involved.
func (s *Selector) RecordUsage(ctx context.Context, records []models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.store.RecordUsage(ctx, records); err != nil {
		return fmt.Errorf("recording usage: %w", err)
	}
	users := map[int]bool{}
	for _, r := range records {
		if !users[r.UserID] {
			users[r.UserID] = true
			s.cache.Invalidate(r.UserID)
		}
	}
	return nil
}

// Select ranks candidates for a muscle group for one user.
func (s *Selector) Select(ctx context.Context, userID int, muscle string, candidates []models.ExerciseMetadata) (Ranking, error) {
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return Ranking{}, err
	}
	usage, ok := s.cache.Usage(userID, muscle)
	if !ok {
		usage, err = s.store.RecentUsage(ctx, userID, muscle, s.now().Add(-s.lookback))
		if err != nil {
			return Ranking{}, fmt.Errorf("loading usage: %w", err)
		}
		s.cache.SetUsage(userID, muscle, usage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Order(candidates, usage, muscle, prefs, s.rng), nil
}
