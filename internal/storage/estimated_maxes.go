package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/models"
)

// UpsertEstimatedMaxes stores maxes keyed by exercise name. An existing row is
// only replaced by a newer one. Names must be unique within the batch.
func (db *DB) UpsertEstimatedMaxes(ctx context.Context, userID int, maxes []models.EstimatedMax) (int64, error) {
	if len(maxes) == 0 {
		return 0, nil
	}

	query := `INSERT INTO estimated_maxes (user_id, exercise_name, one_rep_max_kg,
		confidence, provenance, updated_at) VALUES `
	args := make([]any, 0, len(maxes)*6)
	valueStrings := make([]string, 0, len(maxes))

	for i, m := range maxes {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, userID, m.ExerciseName, m.OneRepMax,
			string(m.Confidence), string(m.Provenance), m.UpdatedAt)
	}

	query += strings.Join(valueStrings, ",") + `
		ON CONFLICT (user_id, exercise_name) DO UPDATE
		SET one_rep_max_kg = EXCLUDED.one_rep_max_kg, confidence = EXCLUDED.confidence,
		    provenance = EXCLUDED.provenance, updated_at = EXCLUDED.updated_at
		WHERE estimated_maxes.updated_at <= EXCLUDED.updated_at`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting estimated maxes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// EstimatedMaxes returns every stored max for a user.
func (db *DB) EstimatedMaxes(ctx context.Context, userID int) ([]models.EstimatedMax, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, one_rep_max_kg, confidence, provenance, updated_at
		 FROM estimated_maxes
		 WHERE user_id = $1
		 ORDER BY exercise_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying estimated maxes: %w", err)
	}
	defer rows.Close()

	var result []models.EstimatedMax
	for rows.Next() {
		var m models.EstimatedMax
		var conf, prov string
		if err := rows.Scan(&m.ExerciseName, &m.OneRepMax, &conf, &prov, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning estimated max: %w", err)
		}
		m.Confidence = models.Confidence(conf)
		m.Provenance = models.Provenance(prov)
		result = append(result, m)
	}
	return result, rows.Err()
}
