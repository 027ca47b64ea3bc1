package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertSleepSession upserts a sleep session (one per date per user).
func (db *DB) InsertSleepSession(ctx context.Context, row models.SleepSessionRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO sleep_sessions (user_id, date, total_sleep, deep, rem, in_bed)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id, date) DO UPDATE
		 SET total_sleep = EXCLUDED.total_sleep, deep = EXCLUDED.deep,
		     rem = EXCLUDED.rem, in_bed = EXCLUDED.in_bed`,
		row.UserID, row.Date, row.TotalSleep, row.Deep, row.REM, row.InBed)
	if err != nil {
		return fmt.Errorf("inserting sleep session: %w", err)
	}
	return nil
}

// LastSleepSession returns the most recent session dated on or before the
// given day, or nil when none is stored.
func (db *DB) LastSleepSession(ctx context.Context, userID int, onOrBefore time.Time) (*models.SleepSessionRow, error) {
	var r models.SleepSessionRow
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, date, total_sleep, deep, rem, in_bed
		 FROM sleep_sessions
		 WHERE user_id = $1 AND date <= $2
		 ORDER BY date DESC
		 LIMIT 1`,
		userID, onOrBefore).Scan(&r.UserID, &r.Date, &r.TotalSleep, &r.Deep, &r.REM, &r.InBed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last sleep session: %w", err)
	}
	return &r, nil
}
