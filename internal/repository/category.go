package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// CreateCategory inserts a category. Name and type are unique per profile.
func (r *Repository) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO categories (id, profile_id, name, type, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.ProfileID, c.Name, string(c.Type), c.Icon, c.Color, c.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return ErrConflict
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListCategories returns a profile's categories ordered by type and name.
func (r *Repository) ListCategories(ctx context.Context, profileID string) ([]*model.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, profile_id, name, type, icon, color, created_at
		FROM categories
		WHERE profile_id = $1
		ORDER BY type, name
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return out, nil
}

// GetCategory retrieves a category by ID.
func (r *Repository) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `
		SELECT id, profile_id, name, type, icon, color, created_at
		FROM categories WHERE id = $1
	`, id))
	if err != nil {
		return nil, notFound(err, "get category")
	}
	return c, nil
}

// UpdateCategory writes name, icon and color if userID still owns the category.
func (r *Repository) UpdateCategory(ctx context.Context, userID string, c *model.Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE categories c SET name = $3, icon = $4, color = $5
		FROM profiles p
		WHERE c.id = $1 AND p.id = c.profile_id AND p.user_id = $2
	`, c.ID, userID, c.Name, c.Icon, c.Color)
	if _, ok := uniqueViolation(err); ok {
		return ErrConflict
	}
	return affected(tag, err, "update category")
}

// DeleteCategory removes a category. Linked transactions keep their category name.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM categories c
		USING profiles p
		WHERE c.id = $1 AND p.id = c.profile_id AND p.user_id = $2
	`, id, userID)
	return affected(tag, err, "delete category")
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	var typ string
	if err := row.Scan(&c.ID, &c.ProfileID, &c.Name, &typ, &c.Icon, &c.Color, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Type = model.EntryType(typ)
	return &c, nil
}
