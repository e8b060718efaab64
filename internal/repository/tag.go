package repository

import (
	"context"
	"fmt"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// CreateTag inserts a tag. Names are unique per profile.
func (r *Repository) CreateTag(ctx context.Context, t *model.Tag) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tags (id, profile_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.ProfileID, t.Name, t.Color, t.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrConflict
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// ListTags returns a profile's tags by name.
func (r *Repository) ListTags(ctx context.Context, profileID string) ([]*model.Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, profile_id, name, color, created_at
		FROM tags WHERE profile_id = $1 ORDER BY name
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Tag, 0)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return out, nil
}

// GetTag retrieves a tag by ID.
func (r *Repository) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	var t model.Tag
	err := r.pool.QueryRow(ctx, `
		SELECT id, profile_id, name, color, created_at FROM tags WHERE id = $1
	`, id).Scan(&t.ID, &t.ProfileID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get tag")
	}
	return &t, nil
}

// DeleteTag removes a tag and its transaction links.
func (r *Repository) DeleteTag(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM tags g
		USING profiles p
		WHERE g.id = $1 AND p.id = g.profile_id AND p.user_id = $2
	`, id, userID)
	return affected(tag, err, "delete tag")
}
