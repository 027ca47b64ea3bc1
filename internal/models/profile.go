package models

import (
	"math"
	"time"
)

// Confidence is the trust tier attached to an estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence tiers so callers can compare them.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Lower returns the next tier down, bottoming out at low.
func (c Confidence) Lower() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Provenance records where an estimated max came from.
type Provenance string

const (
	ProvenanceDirect      Provenance = "direct"
	ProvenanceCalibration Provenance = "calibration"
	ProvenanceInferred    Provenance = "inferred"
)

// Experience is the lifter's training experience tier.
type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceNovice       Experience = "novice"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceAdvanced     Experience = "advanced"
)

// BodyComposition is an immutable snapshot. Use NewBodyComposition so the
// derived fields stay consistent with the inputs.
type BodyComposition struct {
	MassKg     float64 `json:"mass_kg"`
	BodyFatPct float64 `json:"body_fat_pct"`
	HeightCm   float64 `json:"height_cm"`
	LeanMassKg float64 `json:"lean_mass_kg"`
	FFMI       float64 `json:"ffmi"`
}

// NewBodyComposition derives lean mass and fat-free-mass index from mass,
// body-fat percentage and height. Body fat is clamped to [0,60].
func NewBodyComposition(massKg, bodyFatPct, heightCm float64) BodyComposition {
	bf := math.Max(0, math.Min(60, bodyFatPct))
	lean := massKg * (1 - bf/100)
	var ffmi float64
	if heightCm > 0 {
		m := heightCm / 100
		ffmi = lean / (m * m)
	}
	return BodyComposition{
		MassKg:     massKg,
		BodyFatPct: bf,
		HeightCm:   heightCm,
		LeanMassKg: lean,
		FFMI:       math.Round(ffmi*10) / 10,
	}
}

// RegionalComposition holds per-limb lean mass from a segmental scan.
type RegionalComposition struct {
	LeftArmLeanKg  float64 `json:"left_arm_lean_kg"`
	RightArmLeanKg float64 `json:"right_arm_lean_kg"`
	LeftLegLeanKg  float64 `json:"left_leg_lean_kg"`
	RightLegLeanKg float64 `json:"right_leg_lean_kg"`
}

// SetEntry is one logged set.
type SetEntry struct {
	WeightKg  float64  `json:"weight_kg"`
	Reps      int      `json:"reps"`
	RPE       *float64 `json:"rpe,omitempty"`
	Completed bool     `json:"completed"`
}

// ExerciseHistoryEntry is one session's worth of sets for a single exercise.
type ExerciseHistoryEntry struct {
	ExerciseName string     `json:"exercise_name"`
	Date         time.Time  `json:"date"`
	Sets         []SetEntry `json:"sets"`
}

// CompletedSets returns the sets that count toward derived statistics.
func (e ExerciseHistoryEntry) CompletedSets() []SetEntry {
	out := make([]SetEntry, 0, len(e.Sets))
	for _, s := range e.Sets {
		if s.Completed && s.Reps > 0 && s.WeightKg > 0 {
			out = append(out, s)
		}
	}
	return out
}

// EstimatedMax is a derived one-rep max with its provenance.
type EstimatedMax struct {
	ExerciseName string     `json:"exercise_name"`
	OneRepMax    float64    `json:"one_rep_max_kg"`
	Confidence   Confidence `json:"confidence"`
	Provenance   Provenance `json:"provenance"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// StrengthProfile aggregates everything the estimation engine needs. It is
// assembled fresh for every request.
type StrengthProfile struct {
	Composition       BodyComposition        `json:"composition"`
	Experience        Experience             `json:"experience"`
	TrainingAgeMonths int                    `json:"training_age_months"`
	History           []ExerciseHistoryEntry `json:"history"`
	KnownMaxes        []EstimatedMax         `json:"known_maxes"`
	Regional          *RegionalComposition   `json:"regional,omitempty"`
}
