package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// Mesocycle returns the user's current block, or nil when none was started.
func (db *DB) Mesocycle(ctx context.Context, userID int) (*models.MesocycleState, error) {
	var m models.MesocycleState
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, started_at, deload_week, fatigue, last_session_at, updated_at
		 FROM mesocycles WHERE user_id = $1`, userID).
		Scan(&m.UserID, &m.StartedAt, &m.DeloadWeek, &m.Fatigue, &m.LastSessionAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying mesocycle: %w", err)
	}
	return &m, nil
}

// SaveMesocycle upserts the user's block state.
func (db *DB) SaveMesocycle(ctx context.Context, m models.MesocycleState) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO mesocycles (user_id, started_at, deload_week, fatigue, last_session_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id) DO UPDATE
		 SET started_at = EXCLUDED.started_at, deload_week = EXCLUDED.deload_week,
		     fatigue = EXCLUDED.fatigue, last_session_at = EXCLUDED.last_session_at,
		     updated_at = EXCLUDED.updated_at`,
		m.UserID, m.StartedAt, m.DeloadWeek, m.Fatigue, m.LastSessionAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving mesocycle: %w", err)
	}
	return nil
}
