package variety

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// RotationFrequency is how many prior sessions for a muscle group an exercise
// is held back for.
func RotationFrequency(level models.VarietyLevel) int {
	switch level {
	case models.VarietyLow:
		return 0
	case models.VarietyHigh:
		return 3
	default:
		return 2
	}
}

// Ranking is the outcome of ordering a candidate pool.
type Ranking struct {
	Ordered      []models.ExerciseMetadata `json:"ordered"`
	RecentlyUsed []string                  `json:"recently_used,omitempty"`
	// Fallback is set when recently used exercises were let back in because
	// the untouched pool was too small.
	Fallback bool `json:"fallback"`
}

// Order ranks candidates for one muscle group. Exercises used in the last N
// sessions for that muscle (N from RotationFrequency) are held back unless
// fewer than MinPoolSize untouched exercises remain, in which case they follow
// the untouched ones, least recently used first. Within each group S/A tier
// exercises come first when PrioritizeTopTier is set. Remaining ties are
// broken by rng; a nil rng uses the global source.
func Order(candidates []models.ExerciseMetadata, usage []models.UsageRecord, muscle string, prefs models.VarietyPreferences, rng *rand.Rand) Ranking {
	minPool := prefs.MinPoolSize
	if minPool <= 0 {
		minPool = models.DefaultMinPoolSize
	}
	lastUsed := recentUses(usage, muscle, RotationFrequency(prefs.Level))

	var untouched, recent []models.ExerciseMetadata
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		if _, ok := usedAt(lastUsed, c); ok {
			recent = append(recent, c)
		} else {
			untouched = append(untouched, c)
		}
	}

	shuffle(untouched, rng)
	shuffle(recent, rng)
	if prefs.PrioritizeTopTier {
		topTierFirst(untouched)
	}
	sort.SliceStable(recent, func(i, j int) bool {
		ti, _ := usedAt(lastUsed, recent[i])
		tj, _ := usedAt(lastUsed, recent[j])
		return ti.Before(tj)
	})
	if prefs.PrioritizeTopTier {
		topTierFirst(recent)
	}

	r := Ranking{Ordered: untouched}
	for _, c := range recent {
		r.RecentlyUsed = append(r.RecentlyUsed, c.Name)
	}
	if len(untouched) < minPool {
		r.Ordered = append(r.Ordered, recent...)
		r.Fallback = len(recent) > 0
	}
	return r
}

// recentUses maps exercise keys (ID and lowercased name) to their latest use
// within the last n sessions for the muscle. Records without a session ID
// count each calendar day as one session.
func recentUses(usage []models.UsageRecord, muscle string, n int) map[string]time.Time {
	out := map[string]time.Time{}
	if n <= 0 {
		return out
	}
	var rows []models.UsageRecord
	for _, u := range usage {
		if strings.EqualFold(u.MuscleGroup, muscle) {
			rows = append(rows, u)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].UsedAt.After(rows[j].UsedAt) })

	sessions := map[string]bool{}
	for _, u := range rows {
		sid := u.SessionID.String()
		if u.SessionID == uuid.Nil {
			sid = u.UsedAt.Format(time.DateOnly)
		}
		if !sessions[sid] {
			if len(sessions) == n {
				break
			}
			sessions[sid] = true
		}
		for _, k := range []string{u.ExerciseID, strings.ToLower(strings.TrimSpace(u.ExerciseName))} {
			if k == "" {
				continue
			}
			if t, ok := out[k]; !ok || u.UsedAt.After(t) {
				out[k] = u.UsedAt
			}
		}
	}
	return out
}

func usedAt(lastUsed map[string]time.Time, c models.ExerciseMetadata) (time.Time, bool) {
	if c.ID != "" {
		if t, ok := lastUsed[c.ID]; ok {
			return t, true
		}
	}
	t, ok := lastUsed[strings.ToLower(strings.TrimSpace(c.Name))]
	return t, ok
}

func shuffle(xs []models.ExerciseMetadata, rng *rand.Rand) {
	swap := func(i, j int) { xs[i], xs[j] = xs[j], xs[i] }
	if rng == nil {
		rand.Shuffle(len(xs), swap)
		return
	}
	rng.Shuffle(len(xs), swap)
}

// topTierFirst moves S and A tier exercises ahead, keeping relative order.
func topTierFirst(xs []models.ExerciseMetadata) {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Tier.IsTop() && !xs[j].Tier.IsTop() })
}
