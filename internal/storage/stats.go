package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats summarizes what the coach knows about a user.
type DataStats struct {
	TotalSessions   int64           `json:"total_sessions"`
	TotalSets       int64           `json:"total_sets"`
	TotalSleepDays  int64           `json:"total_sleep_days"`
	EstimatedMaxes  int64           `json:"estimated_maxes"`
	DiscomfortLogs  int64           `json:"discomfort_logs"`
	EarliestSession *time.Time      `json:"earliest_session"`
	LatestSession   *time.Time      `json:"latest_session"`
	TopExercises    []ExerciseCount `json:"top_exercises"`
}

// ExerciseCount is the number of sessions an exercise appeared in.
type ExerciseCount struct {
	Name     string `json:"name"`
	Sessions int64  `json:"sessions"`
	Sets     int64  `json:"sets"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT session_id), COUNT(*), MIN(session_date), MAX(session_date)
		 FROM workout_sets WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.TotalSets, &stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM sleep_sessions WHERE user_id = $1),
			(SELECT COUNT(*) FROM estimated_maxes WHERE user_id = $1),
			(SELECT COUNT(*) FROM discomfort_logs WHERE user_id = $1)`, userID,
	).Scan(&stats.TotalSleepDays, &stats.EstimatedMaxes, &stats.DiscomfortLogs)
	if err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, COUNT(DISTINCT session_id), COUNT(*) FILTER (WHERE NOT is_warmup)
		 FROM workout_sets WHERE user_id = $1
		 GROUP BY exercise_name
		 ORDER BY 2 DESC, exercise_name
		 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c ExerciseCount
		if err := rows.Scan(&c.Name, &c.Sessions, &c.Sets); err != nil {
			return nil, fmt.Errorf("scanning exercise count: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, c)
	}
	return stats, rows.Err()
}
