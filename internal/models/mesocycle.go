package models

import "time"

// MesocycleState is the persisted fatigue accumulator for a training block.
type MesocycleState struct {
	UserID        int        `json:"user_id"`
	StartedAt     time.Time  `json:"started_at"`
	DeloadWeek    int        `json:"deload_week"`
	Fatigue       float64    `json:"fatigue"`
	LastSessionAt *time.Time `json:"last_session_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DefaultDeloadWeek is the scheduled deload week of a new block.
const DefaultDeloadWeek = 5

// NewMesocycle starts a block with no fatigue.
func NewMesocycle(userID int, start time.Time) MesocycleState {
	return MesocycleState{UserID: userID, StartedAt: start, DeloadWeek: DefaultDeloadWeek, UpdatedAt: start}
}

// Week returns the 1-based training week at now.
func (m MesocycleState) Week(now time.Time) int {
	if now.Before(m.StartedAt) {
		return 1
	}
	return int(now.Sub(m.StartedAt).Hours()/(24*7)) + 1
}

// DaysSinceLastSession returns whole days since the last logged session, or
// -1 when none has been logged in this block.
func (m MesocycleState) DaysSinceLastSession(now time.Time) int {
	if m.LastSessionAt == nil {
		return -1
	}
	d := int(now.Sub(*m.LastSessionAt).Hours() / 24)
	return max(d, 0)
}
