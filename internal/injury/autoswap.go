package injury

import (
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// SwapAction is what happened to a workout slot.
type SwapAction string

const (
	ActionSwapped SwapAction = "swapped"
	ActionRemoved SwapAction = "removed"
)

// SwapResult describes one changed slot. Replacement is nil when removed.
type SwapResult struct {
	Slot        int                      `json:"slot"`
	Original    string                   `json:"original"`
	OriginalID  string                   `json:"original_id,omitempty"`
	Replacement *models.ExerciseMetadata `json:"replacement"`
	Action      SwapAction               `json:"action"`
	Risk        Level                    `json:"risk"`
	Reason      string                   `json:"reason"`
}

// NeedsSwap reports whether an exercise must leave the workout: it is
// avoided, or flagged caution while any injury is moderate or worse.
func NeedsSwap(ex models.ExerciseMetadata, injuries []models.InjuryContext) (Level, bool) {
	lvl := Assess(ex, injuries)
	switch lvl {
	case Avoid:
		return lvl, true
	case Caution:
		return lvl, maxSeverity(injuries) >= models.SeverityModerate
	}
	return lvl, false
}

// AutoSwap repairs a workout for the given injuries. Each slot that needs a
// swap gets the top-ranked safe alternative not already in the workout and
// not already chosen for another slot; with none it is marked removed. Only
// changed slots are returned, so applying the result and calling AutoSwap
// again yields nothing.
func AutoSwap(workout, pool []models.ExerciseMetadata, injuries []models.InjuryContext) ([]SwapResult, error) {
	if err := Validate(injuries); err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(workout))
	for _, ex := range workout {
		taken[ex.Key()] = true
	}

	var results []SwapResult
	for i, ex := range workout {
		lvl, swap := NeedsSwap(ex, injuries)
		if !swap {
			continue
		}
		res := SwapResult{Slot: i, Original: ex.Name, OriginalID: ex.ID, Risk: lvl}

		var pick *Alternative
		for _, alt := range alternatives(ex, pool, injuries, taken) {
			if alt.Risk == Safe {
				pick = &alt
				break
			}
		}
		if pick == nil {
			res.Action = ActionRemoved
			res.Reason = fmt.Sprintf("%s is %s for %s and no safe alternative is available", ex.Name, lvl, injuredAreas(injuries))
			results = append(results, res)
			continue
		}
		repl := pick.Exercise
		taken[repl.Key()] = true
		res.Action = ActionSwapped
		res.Replacement = &repl
		res.Reason = fmt.Sprintf("%s is %s for %s; %s", ex.Name, lvl, injuredAreas(injuries), pick.Reason)
		results = append(results, res)
	}
	return results, nil
}

// Apply returns a copy of workout with the swaps applied and removed slots
// dropped.
func Apply(workout []models.ExerciseMetadata, results []SwapResult) []models.ExerciseMetadata {
	bySlot := make(map[int]SwapResult, len(results))
	for _, r := range results {
		bySlot[r.Slot] = r
	}
	out := make([]models.ExerciseMetadata, 0, len(workout))
	for i, ex := range workout {
		r, ok := bySlot[i]
		switch {
		case !ok:
			out = append(out, ex)
		case r.Action == ActionSwapped && r.Replacement != nil:
			out = append(out, *r.Replacement)
		}
	}
	return out
}

func injuredAreas(injuries []models.InjuryContext) string {
	seen := map[models.BodyArea]bool{}
	var names []string
	for _, inj := range injuries {
		a := inj.Normalized()
		if !seen[a] {
			seen[a] = true
			names = append(names, areaLabel(a))
		}
	}
	return strings.Join(names, " and ")
}
