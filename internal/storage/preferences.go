package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// VarietyPreferences returns saved settings, or the defaults for a user who
// has never saved any.
func (db *DB) VarietyPreferences(ctx context.Context, userID int) (models.VarietyPreferences, error) {
	var p models.VarietyPreferences
	var level string
	err := db.Pool.QueryRow(ctx,
		`SELECT level, prioritize_top_tier, min_pool_size
		 FROM variety_preferences WHERE user_id = $1`, userID).
		Scan(&level, &p.PrioritizeTopTier, &p.MinPoolSize)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultVarietyPreferences(), nil
	}
	if err != nil {
		return models.VarietyPreferences{}, fmt.Errorf("querying variety preferences: %w", err)
	}
	p.Level = models.VarietyLevel(level)
	return p, nil
}

// SaveVarietyPreferences upserts a user's settings.
func (db *DB) SaveVarietyPreferences(ctx context.Context, userID int, p models.VarietyPreferences) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO variety_preferences (user_id, level, prioritize_top_tier, min_pool_size, updated_at)
		 VALUES ($1,$2,$3,$4,NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET level = EXCLUDED.level, prioritize_top_tier = EXCLUDED.prioritize_top_tier,
		     min_pool_size = EXCLUDED.min_pool_size, updated_at = NOW()`,
		userID, string(p.Level), p.PrioritizeTopTier, p.MinPoolSize)
	if err != nil {
		return fmt.Errorf("saving variety preferences: %w", err)
	}
	return nil
}
