package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSetRow is a row for the workout_sets table.
type WorkoutSetRow struct {
	UserID       int
	SessionID    uuid.UUID
	SessionName  string
	SessionDate  time.Time
	ExerciseName string
	Equipment    string
	TargetReps   int
	IsWarmup     bool
	SetNumber    int
	WeightKg     float64
	Reps         int
	RPE          *float64
	Completed    bool
}

// BodyCompositionRow is a row for the body_composition table.
type BodyCompositionRow struct {
	UserID         int
	MeasuredAt     time.Time
	MassKg         float64
	BodyFatPct     float64
	HeightCm       float64
	LeftArmLeanKg  *float64
	RightArmLeanKg *float64
	LeftLegLeanKg  *float64
	RightLegLeanKg *float64
}

// Regional returns the segmental analysis when all four limbs are present.
func (r BodyCompositionRow) Regional() *RegionalComposition {
	if r.LeftArmLeanKg == nil || r.RightArmLeanKg == nil || r.LeftLegLeanKg == nil || r.RightLegLeanKg == nil {
		return nil
	}
	return &RegionalComposition{
		LeftArmLeanKg:  *r.LeftArmLeanKg,
		RightArmLeanKg: *r.RightArmLeanKg,
		LeftLegLeanKg:  *r.LeftLegLeanKg,
		RightLegLeanKg: *r.RightLegLeanKg,
	}
}

// UserRow is a row for the users table.
type UserRow struct {
	ID                int
	Login             string
	DisplayName       string
	Experience        Experience
	TrainingAgeMonths int
}

// UsageRecord is one use of an exercise for a muscle group in a session.
type UsageRecord struct {
	UserID       int       `json:"user_id"`
	SessionID    uuid.UUID `json:"session_id"`
	MuscleGroup  string    `json:"muscle_group"`
	ExerciseID   string    `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	UsedAt       time.Time `json:"used_at"`
}

// SleepSessionRow is a row from the sleep_sessions table.
type SleepSessionRow struct {
	UserID     int
	Date       time.Time
	TotalSleep float64
	Deep       float64
	REM        float64
	InBed      float64
}

// SessionStats summarizes one logged session's working sets.
type SessionStats struct {
	SessionID     uuid.UUID
	Date          time.Time
	WorkingSets   int
	CompletedSets int
	AvgRPE        *float64
}

// CompletionPct is the share of working sets completed, 0 to 100.
func (s SessionStats) CompletionPct() float64 {
	if s.WorkingSets == 0 {
		return 100
	}
	return float64(s.CompletedSets) / float64(s.WorkingSets) * 100
}
