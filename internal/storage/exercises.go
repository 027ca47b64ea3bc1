package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

const exerciseColumns = `id, name, primary_muscle, secondary_muscles, mechanic, pattern,
	equipment, rep_min, rep_max, tier, unilateral`

// UpsertExercises loads catalog entries, replacing rows with the same ID.
func (db *DB) UpsertExercises(ctx context.Context, exercises []models.ExerciseMetadata) (int64, error) {
	if len(exercises) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (` + exerciseColumns + `) VALUES `
	args := make([]any, 0, len(exercises)*11)
	valueStrings := make([]string, 0, len(exercises))

	for i, e := range exercises {
		base := i * 11
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11,
		))
		secondary := e.SecondaryMuscles
		if secondary == nil {
			secondary = []string{}
		}
		args = append(args, e.Key(), e.Name, e.PrimaryMuscle, secondary,
			string(e.Mechanic), string(e.Pattern), string(e.Equipment),
			e.RepRange.Min, e.RepRange.Max, string(e.Tier), e.Unilateral)
	}

	query += strings.Join(valueStrings, ",") + `
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, primary_muscle = EXCLUDED.primary_muscle,
		    secondary_muscles = EXCLUDED.secondary_muscles, mechanic = EXCLUDED.mechanic,
		    pattern = EXCLUDED.pattern, equipment = EXCLUDED.equipment,
		    rep_min = EXCLUDED.rep_min, rep_max = EXCLUDED.rep_max,
		    tier = EXCLUDED.tier, unilateral = EXCLUDED.unilateral`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Exercises returns the whole catalog ordered by name.
func (db *DB) Exercises(ctx context.Context) ([]models.ExerciseMetadata, error) {
	return db.queryExercises(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY name`)
}

// ExercisesForMuscle returns catalog entries whose primary muscle matches.
func (db *DB) ExercisesForMuscle(ctx context.Context, muscle string) ([]models.ExerciseMetadata, error) {
	return db.queryExercises(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE lower(primary_muscle) = lower($1) ORDER BY name`,
		muscle)
}

// ExerciseByName looks up an entry by ID or case-insensitive name. It returns
// nil when nothing matches.
func (db *DB) ExerciseByName(ctx context.Context, name string) (*models.ExerciseMetadata, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises
		 WHERE id = $1 OR lower(name) = lower($1)
		 ORDER BY (id = $1) DESC
		 LIMIT 1`, strings.TrimSpace(name))
	e, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %q: %w", name, err)
	}
	return &e, nil
}

func (db *DB) queryExercises(ctx context.Context, query string, args ...any) ([]models.ExerciseMetadata, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseMetadata
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func scanExercise(row pgx.Row) (models.ExerciseMetadata, error) {
	var e models.ExerciseMetadata
	var mechanic, pattern, equipment, tier string
	err := row.Scan(&e.ID, &e.Name, &e.PrimaryMuscle, &e.SecondaryMuscles, &mechanic, &pattern,
		&equipment, &e.RepRange.Min, &e.RepRange.Max, &tier, &e.Unilateral)
	e.Mechanic = models.Mechanic(mechanic)
	e.Pattern = models.MovementPattern(pattern)
	e.Equipment = models.Equipment(equipment)
	e.Tier = models.Tier(tier)
	return e, err
}
