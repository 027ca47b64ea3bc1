package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DiscomfortLevel grades a discomfort report. Pain is the top level.
type DiscomfortLevel string

const (
	DiscomfortTwinge DiscomfortLevel = "twinge"
	DiscomfortMild   DiscomfortLevel = "discomfort"
	DiscomfortPain   DiscomfortLevel = "pain"
)

// Rank orders levels; unknown levels rank 0.
func (l DiscomfortLevel) Rank() int {
	switch l {
	case DiscomfortPain:
		return 3
	case DiscomfortMild:
		return 2
	case DiscomfortTwinge:
		return 1
	}
	return 0
}

// Valid reports whether the level is one of the known values.
func (l DiscomfortLevel) Valid() bool { return l.Rank() > 0 }

// DiscomfortEvent is one set-level discomfort report.
type DiscomfortEvent struct {
	ID           uuid.UUID       `json:"id"`
	UserID       int             `json:"user_id"`
	BodyPart     string          `json:"body_part"`
	Level        DiscomfortLevel `json:"level"`
	ExerciseName string          `json:"exercise_name,omitempty"`
	SetNumber    int             `json:"set_number,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	LoggedAt     time.Time       `json:"logged_at"`
}

// BodyPartKey is the grouping key for a body part: lowercased with spaces and
// dashes as underscores. Left and right stay distinct.
func BodyPartKey(part string) string {
	s := strings.ToLower(strings.TrimSpace(part))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' || r == '_' }), "_")
}
