package models

import "math"

// ProgressionType names the kind of session a set of targets prescribes.
type ProgressionType string

const (
	ProgressionLinear    ProgressionType = "linear"
	ProgressionDouble    ProgressionType = "double_progression"
	ProgressionMaintain  ProgressionType = "maintain"
	ProgressionTechnique ProgressionType = "technique"
	ProgressionDeload    ProgressionType = "deload"
)

// DefaultMinIncrementKg is the plate granularity used when an exercise does
// not specify its own.
const DefaultMinIncrementKg = 2.5

// ProgressionTargets is the output contract of the weight and readiness logic.
type ProgressionTargets struct {
	WeightKg        float64         `json:"weight_kg"`
	RepRange        RepRange        `json:"rep_range"`
	TargetRIR       int             `json:"target_rir"`
	Sets            int             `json:"sets"`
	RestSeconds     int             `json:"rest_seconds"`
	ProgressionType ProgressionType `json:"progression_type"`
	Rationale       string          `json:"rationale"`
}

// RoundToIncrement rounds w to the nearest multiple of inc. A non-positive
// increment falls back to DefaultMinIncrementKg.
func RoundToIncrement(w, inc float64) float64 {
	if inc <= 0 {
		inc = DefaultMinIncrementKg
	}
	if w <= 0 {
		return 0
	}
	return math.Round(w/inc) * inc
}

// FloorToIncrement rounds w down to a multiple of inc.
func FloorToIncrement(w, inc float64) float64 {
	if inc <= 0 {
		inc = DefaultMinIncrementKg
	}
	if w <= 0 {
		return 0
	}
	// Nudge so 87.5/2.5 does not floor to 34.999...
	return math.Floor(w/inc+1e-9) * inc
}
