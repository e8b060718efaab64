package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// TransactionFilter narrows ListTransactions. Zero values are ignored.
type TransactionFilter struct {
	Type       model.EntryType
	CategoryID string
	AccountID  string
	TagID      string
	From       string // inclusive, YYYY-MM-DD
	To         string // inclusive, YYYY-MM-DD
	Limit      int
	Offset     int
}

const transactionSelect = `
	SELECT t.id, t.profile_id, t.type, t.amount::float8, t.category, t.category_id,
	       t.account_id, t.description, t.date::text, t.created_at,
	       COALESCE(array_agg(tt.tag_id ORDER BY tt.tag_id) FILTER (WHERE tt.tag_id IS NOT NULL), '{}')
	FROM transactions t
	LEFT JOIN transaction_tags tt ON tt.transaction_id = t.id
`

// CreateTransaction inserts a transaction and its tag links atomically.
// Category, account and tags must belong to the same profile.
func (r *Repository) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	date, err := time.Parse(model.DateLayout, t.Date)
	if err != nil {
		return fmt.Errorf("failed to parse transaction date: %w", err)
	}
	tagIDs := dedupe(t.TagIDs)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkReferences(ctx, tx, t.ProfileID, t.CategoryID, t.AccountID, tagIDs); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (id, profile_id, type, amount, category, category_id,
		                          account_id, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.ProfileID, string(t.Type), t.Amount, t.Category, t.CategoryID,
		t.AccountID, t.Description, date, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if len(tagIDs) > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO transaction_tags (transaction_id, tag_id)
			SELECT $1, unnest($2::text[])
		`, t.ID, pq.Array(tagIDs))
		if err != nil {
			return fmt.Errorf("failed to link transaction tags: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.TagIDs = tagIDs
	return nil
}

func checkReferences(ctx context.Context, tx pgx.Tx, profileID string, categoryID, accountID *string, tagIDs []string) error {
	if categoryID != nil {
		if err := checkExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND profile_id = $2)`, *categoryID, profileID); err != nil {
			return err
		}
	}
	if accountID != nil {
		if err := checkExists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1 AND profile_id = $2)`, *accountID, profileID); err != nil {
			return err
		}
	}
	if len(tagIDs) > 0 {
		var n int
		err := tx.QueryRow(ctx, `
			SELECT count(*) FROM tags WHERE profile_id = $1 AND id = ANY($2::text[])
		`, profileID, pq.Array(tagIDs)).Scan(&n)
		if err != nil {
			return fmt.Errorf("failed to check tags: %w", err)
		}
		if n != len(tagIDs) {
			return ErrInvalidReference
		}
	}
	return nil
}

func checkExists(ctx context.Context, tx pgx.Tx, query, id, profileID string) error {
	var ok bool
	if err := tx.QueryRow(ctx, query, id, profileID).Scan(&ok); err != nil {
		return fmt.Errorf("failed to check reference: %w", err)
	}
	if !ok {
		return ErrInvalidReference
	}
	return nil
}

// GetTransaction retrieves a transaction with its tag IDs.
func (r *Repository) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := r.pool.QueryRow(ctx, transactionSelect+` WHERE t.id = $1 GROUP BY t.id`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, notFound(err, "get transaction")
	}
	return t, nil
}

// ListTransactions returns a profile's transactions, newest date first.
func (r *Repository) ListTransactions(ctx context.Context, profileID string, f TransactionFilter) ([]*model.Transaction, error) {
	where := []string{"t.profile_id = $1"}
	args := []any{profileID}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.Type != "" {
		add("t.type = $%d", string(f.Type))
	}
	if f.CategoryID != "" {
		add("t.category_id = $%d", f.CategoryID)
	}
	if f.AccountID != "" {
		add("t.account_id = $%d", f.AccountID)
	}
	if f.TagID != "" {
		add("EXISTS (SELECT 1 FROM transaction_tags x WHERE x.transaction_id = t.id AND x.tag_id = $%d)", f.TagID)
	}
	if f.From != "" {
		add("t.date >= $%d::date", f.From)
	}
	if f.To != "" {
		add("t.date <= $%d::date", f.To)
	}

	query := transactionSelect + " WHERE " + strings.Join(where, " AND ") +
		" GROUP BY t.id ORDER BY t.date DESC, t.created_at DESC, t.id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

// DeleteTransaction removes a transaction if userID still owns its profile.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM transactions t
		USING profiles p
		WHERE t.id = $1 AND p.id = t.profile_id AND p.user_id = $2
	`, id, userID)
	return affected(tag, err, "delete transaction")
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	var typ string
	err := row.Scan(
		&t.ID,
		&t.ProfileID,
		&typ,
		&t.Amount,
		&t.Category,
		&t.CategoryID,
		&t.AccountID,
		&t.Description,
		&t.Date,
		&t.CreatedAt,
		&t.TagIDs,
	)
	if err != nil {
		return nil, err
	}
	t.Type = model.EntryType(typ)
	return &t, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
