package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertBodyComposition stores a measurement, replacing one taken at the same instant.
func (db *DB) InsertBodyComposition(ctx context.Context, row models.BodyCompositionRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO body_composition (user_id, measured_at, mass_kg, body_fat_pct, height_cm,
		 left_arm_lean_kg, right_arm_lean_kg, left_leg_lean_kg, right_leg_lean_kg)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id, measured_at) DO UPDATE
		 SET mass_kg = EXCLUDED.mass_kg, body_fat_pct = EXCLUDED.body_fat_pct,
		     height_cm = EXCLUDED.height_cm,
		     left_arm_lean_kg = EXCLUDED.left_arm_lean_kg, right_arm_lean_kg = EXCLUDED.right_arm_lean_kg,
		     left_leg_lean_kg = EXCLUDED.left_leg_lean_kg, right_leg_lean_kg = EXCLUDED.right_leg_lean_kg`,
		row.UserID, row.MeasuredAt, row.MassKg, row.BodyFatPct, row.HeightCm,
		row.LeftArmLeanKg, row.RightArmLeanKg, row.LeftLegLeanKg, row.RightLegLeanKg)
	if err != nil {
		return fmt.Errorf("inserting body composition: %w", err)
	}
	return nil
}

// LatestBodyComposition returns the newest measurement, or nil when none exists.
func (db *DB) LatestBodyComposition(ctx context.Context, userID int) (*models.BodyCompositionRow, error) {
	var r models.BodyCompositionRow
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, measured_at, mass_kg, body_fat_pct, height_cm,
		 left_arm_lean_kg, right_arm_lean_kg, left_leg_lean_kg, right_leg_lean_kg
		 FROM body_composition
		 WHERE user_id = $1
		 ORDER BY measured_at DESC
		 LIMIT 1`, userID).
		Scan(&r.UserID, &r.MeasuredAt, &r.MassKg, &r.BodyFatPct, &r.HeightCm,
			&r.LeftArmLeanKg, &r.RightArmLeanKg, &r.LeftLegLeanKg, &r.RightLegLeanKg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying body composition: %w", err)
	}
	return &r, nil
}
