package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// accountSelect derives current_balance from the opening balance and linked transactions.
const accountSelect = `
	SELECT a.id, a.profile_id, a.name, a.type, a.balance::float8,
	       (a.balance + COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount ELSE -t.amount END), 0))::float8,
	       a.currency, a.icon, a.color, a.created_at
	FROM accounts a
	LEFT JOIN transactions t ON t.account_id = a.id
`

// CreateAccount inserts an account.
func (r *Repository) CreateAccount(ctx context.Context, a *model.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, profile_id, name, type, balance, currency, icon, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, a.ID, a.ProfileID, a.Name, string(a.Type), a.Balance, a.Currency, a.Icon, a.Color, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	a.CurrentBalance = a.Balance
	return nil
}

// ListAccounts returns a profile's accounts with current balances.
func (r *Repository) ListAccounts(ctx context.Context, profileID string) ([]*model.Account, error) {
	rows, err := r.pool.Query(ctx, accountSelect+`
		WHERE a.profile_id = $1
		GROUP BY a.id
		ORDER BY a.name, a.id
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return out, nil
}

// GetAccount retrieves an account with its current balance.
func (r *Repository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, accountSelect+` WHERE a.id = $1 GROUP BY a.id`, id))
	if err != nil {
		return nil, notFound(err, "get account")
	}
	return a, nil
}

// UpdateAccount writes the mutable account fields if userID still owns it.
func (r *Repository) UpdateAccount(ctx context.Context, userID string, a *model.Account) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts a
		SET name = $3, type = $4, balance = $5, currency = $6, icon = $7, color = $8
		FROM profiles p
		WHERE a.id = $1 AND p.id = a.profile_id AND p.user_id = $2
	`, a.ID, userID, a.Name, string(a.Type), a.Balance, a.Currency, a.Icon, a.Color)
	return affected(tag, err, "update account")
}

// DeleteAccount removes an account. Linked transactions are kept unlinked.
func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM accounts a
		USING profiles p
		WHERE a.id = $1 AND p.id = a.profile_id AND p.user_id = $2
	`, id, userID)
	return affected(tag, err, "delete account")
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	var typ string
	err := row.Scan(&a.ID, &a.ProfileID, &a.Name, &typ, &a.Balance, &a.CurrentBalance,
		&a.Currency, &a.Icon, &a.Color, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Type = model.AccountType(typ)
	return &a, nil
}
