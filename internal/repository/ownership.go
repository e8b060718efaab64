package repository

import (
	"context"
	"fmt"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// ownershipQueries joins each leaf to its profile so the whole chain is
// read from one statement snapshot.
var ownershipQueries = map[model.ResourceKind]string{
	model.ResourceProfile: `
		SELECT p.id, p.id, p.user_id FROM profiles p WHERE p.id = $1`,
	model.ResourceTransaction: `
		SELECT t.id, p.id, p.user_id FROM transactions t
		JOIN profiles p ON p.id = t.profile_id WHERE t.id = $1`,
	model.ResourceCategory: `
		SELECT c.id, p.id, p.user_id FROM categories c
		JOIN profiles p ON p.id = c.profile_id WHERE c.id = $1`,
	model.ResourceAccount: `
		SELECT a.id, p.id, p.user_id FROM accounts a
		JOIN profiles p ON p.id = a.profile_id WHERE a.id = $1`,
	model.ResourceBudget: `
		SELECT b.id, p.id, p.user_id FROM budgets b
		JOIN profiles p ON p.id = b.profile_id WHERE b.id = $1`,
	model.ResourceTag: `
		SELECT g.id, p.id, p.user_id FROM tags g
		JOIN profiles p ON p.id = g.profile_id WHERE g.id = $1`,
}

// ResolveOwned loads a resource together with the user that owns it.
// Returns ErrNotFound when the resource or any link of its chain is absent.
func (r *Repository) ResolveOwned(ctx context.Context, kind model.ResourceKind, id string) (*model.OwnedResource, error) {
	query, ok := ownershipQueries[kind]
	if !ok {
		return nil, fmt.Errorf("resolve owner: unknown resource kind %q", kind)
	}

	res := model.OwnedResource{Kind: kind}
	err := r.pool.QueryRow(ctx, query, id).Scan(&res.ID, &res.ProfileID, &res.OwnerID)
	if err != nil {
		return nil, notFound(err, "resolve owner")
	}
	return &res, nil
}
