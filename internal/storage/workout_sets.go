package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// InsertWorkoutSets batch-inserts logged sets. Returns count inserted.
func (db *DB) InsertWorkoutSets(ctx context.Context, rows []models.WorkoutSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (user_id, session_id, session_name, session_date,
		exercise_name, equipment, target_reps, is_warmup, set_number,
		weight_kg, reps, rpe, completed) VALUES `
	args := make([]any, 0, len(rows)*13)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 13
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		args = append(args, r.UserID, r.SessionID, r.SessionName, r.SessionDate,
			r.ExerciseName, r.Equipment, r.TargetReps, r.IsWarmup, r.SetNumber,
			r.WeightKg, r.Reps, r.RPE, r.Completed)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteSessionSets removes every set of one session so a re-import replaces it.
func (db *DB) DeleteSessionSets(ctx context.Context, userID int, sessionID uuid.UUID) error {
	_, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sets WHERE user_id = $1 AND session_id = $2`, userID, sessionID)
	if err != nil {
		return fmt.Errorf("deleting session sets: %w", err)
	}
	return nil
}

// QueryWorkoutSets retrieves workout sets in a date range.
func (db *DB) QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSetRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, session_id, session_name, session_date,
		 exercise_name, equipment, target_reps, is_warmup, set_number,
		 weight_kg, reps, rpe, completed
		 FROM workout_sets
		 WHERE session_date >= $1 AND session_date < $2 AND user_id = $3
		 ORDER BY session_date DESC, exercise_name ASC, is_warmup DESC, set_number ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRow
	for rows.Next() {
		var r models.WorkoutSetRow
		if err := rows.Scan(&r.UserID, &r.SessionID, &r.SessionName, &r.SessionDate,
			&r.ExerciseName, &r.Equipment, &r.TargetReps, &r.IsWarmup, &r.SetNumber,
			&r.WeightKg, &r.Reps, &r.RPE, &r.Completed); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ExerciseHistory loads working sets since the given time, grouped into one
// entry per session and exercise, newest first.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, since, now time.Time) ([]models.ExerciseHistoryEntry, error) {
	rows, err := db.QueryWorkoutSets(ctx, since, now.Add(time.Second), userID)
	if err != nil {
		return nil, err
	}
	return GroupHistory(rows), nil
}

// GroupHistory folds set rows into history entries. Warm-up sets are dropped
// and entry order follows the first appearance of each session/exercise pair.
func GroupHistory(rows []models.WorkoutSetRow) []models.ExerciseHistoryEntry {
	type key struct {
		session uuid.UUID
		date    time.Time
		name    string
	}
	index := map[key]int{}
	var out []models.ExerciseHistoryEntry
	for _, r := range rows {
		if r.IsWarmup {
			continue
		}
		k := key{session: r.SessionID, date: r.SessionDate, name: r.ExerciseName}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, models.ExerciseHistoryEntry{ExerciseName: r.ExerciseName, Date: r.SessionDate})
		}
		out[i].Sets = append(out[i].Sets, models.SetEntry{
			WeightKg:  r.WeightKg,
			Reps:      r.Reps,
			RPE:       r.RPE,
			Completed: r.Completed,
		})
	}
	return out
}

// SessionStats aggregates working-set completion and average RPE per session
// since the given time, oldest first.
func (db *DB) SessionStats(ctx context.Context, userID int, since time.Time) ([]models.SessionStats, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, MIN(session_date),
		        COUNT(*)::int,
		        COUNT(*) FILTER (WHERE completed)::int,
		        AVG(rpe) FILTER (WHERE completed)
		 FROM workout_sets
		 WHERE user_id = $1 AND session_date >= $2 AND NOT is_warmup
		 GROUP BY session_id
		 ORDER BY MIN(session_date) ASC`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("querying session stats: %w", err)
	}
	defer rows.Close()

	var result []models.SessionStats
	for rows.Next() {
		var s models.SessionStats
		if err := rows.Scan(&s.SessionID, &s.Date, &s.WorkingSets, &s.CompletedSets, &s.AvgRPE); err != nil {
			return nil, fmt.Errorf("scanning session stats: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
