package repository

import (
	"context"
	"fmt"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// CreateProfile inserts a profile for its user.
func (r *Repository) CreateProfile(ctx context.Context, p *model.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO profiles (id, user_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.UserID, p.Name, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// ListProfiles returns a user's profiles, oldest first.
func (r *Repository) ListProfiles(ctx context.Context, userID string) ([]*model.Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, created_at
		FROM profiles
		WHERE user_id = $1
		ORDER BY created_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]*model.Profile, 0)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// GetProfile retrieves a profile by ID.
func (r *Repository) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, created_at FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get profile")
	}
	return &p, nil
}

// RenameProfile changes a profile's name if userID still owns it.
func (r *Repository) RenameProfile(ctx context.Context, userID, id, name string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles SET name = $3 WHERE id = $1 AND user_id = $2
	`, id, userID, name)
	return affected(tag, err, "rename profile")
}

// DeleteProfile removes a profile and, by cascade, everything under it.
func (r *Repository) DeleteProfile(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND user_id = $2`, id, userID)
	return affected(tag, err, "delete profile")
}
