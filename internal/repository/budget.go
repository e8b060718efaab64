package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// budgetSelect derives spent as the expense total for the budget month,
// limited to the budget category when one is set.
const budgetSelect = `
	SELECT b.id, b.profile_id, b.category_id, b.amount::float8, b.month, b.year, b.alert_threshold,
	       COALESCE((
	           SELECT SUM(t.amount) FROM transactions t
	           WHERE t.profile_id = b.profile_id
	             AND t.type = 'expense'
	             AND (b.category_id IS NULL OR t.category_id = b.category_id)
	             AND t.date >= make_date(b.year, b.month, 1)
	             AND t.date < make_date(b.year, b.month, 1) + INTERVAL '1 month'
	       ), 0)::float8,
	       b.created_at
	FROM budgets b
`

// CreateBudget inserts a budget. A category must belong to the same profile.
func (r *Repository) CreateBudget(ctx context.Context, b *model.Budget) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO budgets (id, profile_id, category_id, amount, month, year, alert_threshold, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE $3::text IS NULL
		   OR EXISTS (SELECT 1 FROM categories WHERE id = $3 AND profile_id = $2)
	`, b.ID, b.ProfileID, b.CategoryID, b.Amount, b.Month, b.Year, b.AlertThreshold, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidReference
	}
	return nil
}

// ListBudgets returns a profile's budgets, optionally for one month and year.
func (r *Repository) ListBudgets(ctx context.Context, profileID string, month, year int) ([]*model.Budget, error) {
	query := budgetSelect + ` WHERE b.profile_id = $1`
	args := []any{profileID}
	if month > 0 {
		args = append(args, month)
		query += fmt.Sprintf(" AND b.month = $%d", len(args))
	}
	if year > 0 {
		args = append(args, year)
		query += fmt.Sprintf(" AND b.year = $%d", len(args))
	}
	query += " ORDER BY b.year DESC, b.month DESC, b.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return out, nil
}

// GetBudget retrieves a budget with its spent total.
func (r *Repository) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	b, err := scanBudget(r.pool.QueryRow(ctx, budgetSelect+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "get budget")
	}
	return b, nil
}

// UpdateBudget writes amount and alert threshold if userID still owns the budget.
func (r *Repository) UpdateBudget(ctx context.Context, userID string, b *model.Budget) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets b SET amount = $3, alert_threshold = $4
		FROM profiles p
		WHERE b.id = $1 AND p.id = b.profile_id AND p.user_id = $2
	`, b.ID, userID, b.Amount, b.AlertThreshold)
	return affected(tag, err, "update budget")
}

// DeleteBudget removes a budget.
func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM budgets b
		USING profiles p
		WHERE b.id = $1 AND p.id = b.profile_id AND p.user_id = $2
	`, id, userID)
	return affected(tag, err, "delete budget")
}

func scanBudget(row pgx.Row) (*model.Budget, error) {
	var b model.Budget
	err := row.Scan(&b.ID, &b.ProfileID, &b.CategoryID, &b.Amount, &b.Month, &b.Year,
		&b.AlertThreshold, &b.Spent, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
