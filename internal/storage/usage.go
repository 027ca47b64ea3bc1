package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/variety"
)

var _ variety.Store = (*DB)(nil)

// RecordUsage batch-inserts exercise usage. A repeat of the same exercise for
// the same muscle in one session is ignored.
func (db *DB) RecordUsage(ctx context.Context, records []models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO exercise_usage (user_id, session_id, muscle_group, exercise_id,
		exercise_name, used_at) VALUES `
	args := make([]any, 0, len(records)*6)
	valueStrings := make([]string, 0, len(records))

	for i, r := range records {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.UserID, r.SessionID, strings.ToLower(r.MuscleGroup),
			r.ExerciseID, r.ExerciseName, r.UsedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting exercise usage: %w", err)
	}
	return nil
}

// RecentUsage returns usage for one muscle group since the given time, newest first.
func (db *DB) RecentUsage(ctx context.Context, userID int, muscle string, since time.Time) ([]models.UsageRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, session_id, muscle_group, exercise_id, exercise_name, used_at
		 FROM exercise_usage
		 WHERE user_id = $1 AND muscle_group = $2 AND used_at >= $3
		 ORDER BY used_at DESC`,
		userID, strings.ToLower(muscle), since)
	if err != nil {
		return nil, fmt.Errorf("querying exercise usage: %w", err)
	}
	defer rows.Close()

	var result []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		if err := rows.Scan(&r.UserID, &r.SessionID, &r.MuscleGroup, &r.ExerciseID,
			&r.ExerciseName, &r.UsedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise usage: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
