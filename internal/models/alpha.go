package models

import "time"

// AlphaSession represents a parsed Alpha Progression workout session.
type AlphaSession struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []AlphaExercise
}

// AlphaExercise represents a single exercise within a session.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []AlphaSet
}

// AlphaSet represents a single set (working or warmup). RIR is -1 when the
// app did not track it.
type AlphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// RPE converts the logged RIR to RPE, or nil for untracked sets.
func (s AlphaSet) RPE() *float64 {
	if s.IsWarmup || s.RIR < 0 {
		return nil
	}
	rpe := 10 - s.RIR
	if rpe < 1 {
		rpe = 1
	}
	return &rpe
}
