package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repcoach/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetUser returns a user's training profile, or nil when the ID is unknown.
func (db *DB) GetUser(ctx context.Context, userID int) (*models.UserRow, error) {
	var u models.UserRow
	var exp string
	err := db.Pool.QueryRow(ctx,
		`SELECT id, login, display_name, experience, training_age_months
		 FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Login, &u.DisplayName, &exp, &u.TrainingAgeMonths)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %d: %w", userID, err)
	}
	u.Experience = models.Experience(exp)
	return &u, nil
}

// UpdateTrainingProfile sets the experience tier and training age.
func (db *DB) UpdateTrainingProfile(ctx context.Context, userID int, exp models.Experience, trainingAgeMonths int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE users SET experience = $2, training_age_months = $3 WHERE id = $1`,
		userID, string(exp), trainingAgeMonths)
	if err != nil {
		return fmt.Errorf("updating training profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating training profile: user %d not found", userID)
	}
	return nil
}
