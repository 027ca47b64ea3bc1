package injury

import (
	"math"
	"sort"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// MaxAlternatives caps the list returned by SafeAlternatives.
const MaxAlternatives = 10

// Match score weights; they sum to 100.
const (
	scoreMuscle    = 30
	scorePattern   = 25
	scoreMechanic  = 15
	scoreSecondary = 15
	scoreRepRange  = 10
	scoreTier      = 5
)

// Alternative is a candidate replacement for an exercise.
type Alternative struct {
	Exercise models.ExerciseMetadata `json:"exercise"`
	Risk     Level                   `json:"risk"`
	Score    int                     `json:"score"`
	Reason   string                  `json:"reason"`
}

// SafeAlternatives ranks pool exercises that train the same primary muscle
// as source and are not avoided by any injury. Safe candidates come before
// caution ones, then by match score. A severe injury drops caution entirely.
func SafeAlternatives(source models.ExerciseMetadata, pool []models.ExerciseMetadata, injuries []models.InjuryContext) ([]Alternative, error) {
	if err := Validate(injuries); err != nil {
		return nil, err
	}
	return alternatives(source, pool, injuries, nil), nil
}

func alternatives(source models.ExerciseMetadata, pool []models.ExerciseMetadata, injuries []models.InjuryContext, exclude map[string]bool) []Alternative {
	strict := hasSevere(injuries)
	muscle := strings.ToLower(source.PrimaryMuscle)
	seen := map[string]bool{source.Key(): true}

	var out []Alternative
	for _, c := range pool {
		key := c.Key()
		if seen[key] || exclude[key] || strings.ToLower(c.PrimaryMuscle) != muscle {
			continue
		}
		seen[key] = true
		lvl := Assess(c, injuries)
		if !allowed(lvl, strict) {
			continue
		}
		out = append(out, Alternative{
			Exercise: c,
			Risk:     lvl,
			Score:    MatchScore(source, c),
			Reason:   alternativeReason(c, lvl, injuries),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Risk != b.Risk {
			return a.Risk.rank() < b.Risk.rank()
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Exercise.Name < b.Exercise.Name
	})
	if len(out) > MaxAlternatives {
		out = out[:MaxAlternatives]
	}
	return out
}

// MatchScore rates how well candidate stands in for source, 0-100.
func MatchScore(source, candidate models.ExerciseMetadata) int {
	var s float64
	if strings.EqualFold(source.PrimaryMuscle, candidate.PrimaryMuscle) {
		s += scoreMuscle
	}
	if source.Pattern != "" && source.Pattern == candidate.Pattern {
		s += scorePattern
	}
	if source.Mechanic != "" && source.Mechanic == candidate.Mechanic {
		s += scoreMechanic
	}
	s += scoreSecondary * overlap(source.SecondaryMuscles, candidate.SecondaryMuscles)

	if source.RepRange.Valid() && candidate.RepRange.Valid() {
		a, b := source.RepRange.Mid(), candidate.RepRange.Mid()
		s += scoreRepRange * math.Max(0, 1-math.Abs(a-b)/math.Max(a, b))
	} else {
		s += scoreRepRange / 2
	}

	diff := math.Abs(float64(source.Tier.Rank() - candidate.Tier.Rank()))
	s += scoreTier * math.Max(0, 1-diff/4)

	return int(math.Min(100, math.Round(s)))
}

// overlap is the Jaccard similarity of two muscle lists; two empty lists
// match fully.
func overlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	set := make(map[string]bool, len(a))
	for _, m := range a {
		set[strings.ToLower(m)] = true
	}
	union := len(set)
	inter := 0
	for _, m := range b {
		m = strings.ToLower(m)
		if set[m] {
			inter++
			continue
		}
		union++
		set[m] = true
	}
	return float64(inter) / float64(union)
}

func alternativeReason(c models.ExerciseMetadata, lvl Level, injuries []models.InjuryContext) string {
	if len(injuries) == 0 {
		return "trains the same primary muscle"
	}
	var parts []string
	seen := map[models.BodyArea]bool{}
	for _, inj := range injuries {
		area := inj.Normalized()
		if seen[area] {
			continue
		}
		seen[area] = true
		if Risk(c, inj.Area) == Caution {
			parts = append(parts, "use caution with your "+areaLabel(area)+": reduce range and stop on pain")
			continue
		}
		if r := reasonFor(c, area); r != "" {
			parts = append(parts, r)
		}
	}
	if len(parts) == 0 {
		return string(lvl)
	}
	return strings.Join(parts, "; ")
}

func areaLabel(a models.BodyArea) string {
	return strings.ReplaceAll(string(a), "_", " ")
}
