package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// InsertDiscomfort stores one discomfort report. Re-sending the same ID is a no-op.
func (db *DB) InsertDiscomfort(ctx context.Context, ev models.DiscomfortEvent) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO discomfort_logs (id, user_id, body_part, level, exercise_name, set_number, notes, logged_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID, ev.UserID, ev.BodyPart, string(ev.Level), ev.ExerciseName, ev.SetNumber, ev.Notes, ev.LoggedAt)
	if err != nil {
		return fmt.Errorf("inserting discomfort log: %w", err)
	}
	return nil
}

// DiscomfortSince returns reports logged at or after the given time, oldest first.
func (db *DB) DiscomfortSince(ctx context.Context, userID int, since time.Time) ([]models.DiscomfortEvent, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, body_part, level, exercise_name, set_number, notes, logged_at
		 FROM discomfort_logs
		 WHERE user_id = $1 AND logged_at >= $2
		 ORDER BY logged_at ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying discomfort logs: %w", err)
	}
	defer rows.Close()

	var result []models.DiscomfortEvent
	for rows.Next() {
		var ev models.DiscomfortEvent
		var level string
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.BodyPart, &level, &ev.ExerciseName,
			&ev.SetNumber, &ev.Notes, &ev.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning discomfort log: %w", err)
		}
		ev.Level = models.DiscomfortLevel(level)
		result = append(result, ev)
	}
	return result, rows.Err()
}
