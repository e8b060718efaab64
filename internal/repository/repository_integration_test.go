//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	require.NoError(t, err, "connect db")
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	require.NoError(t, err, "acquire db lock")
	t.Cleanup(func() { _ = unlock() })

	require.NoError(t, testutil.ResetSchema(ctx, repo.Pool()))
	require.NoError(t, repo.Migrate(ctx))

	return ctx, repo
}

func seedUser(t *testing.T, ctx context.Context, repo *Repository, name string) *model.User {
	t.Helper()
	u := testutil.NewTestUser(t, name)
	require.NoError(t, repo.CreateUser(ctx, u))
	return u
}

func seedProfile(t *testing.T, ctx context.Context, repo *Repository, userID string) *model.Profile {
	t.Helper()
	p := testutil.NewTestProfile(t, userID, "Personal")
	require.NoError(t, repo.CreateProfile(ctx, p))
	return p
}

func TestIntegrationMigrate_Idempotent(t *testing.T) {
	ctx, repo := newTestEnv(t)
	require.NoError(t, repo.Migrate(ctx))

	require.NoError(t, repo.MigrateDown(ctx))
	require.NoError(t, repo.Migrate(ctx))
}

func TestIntegrationUsers_UniqueUsernameAndEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice")

	dupName := testutil.NewTestUser(t, "alice")
	dupName.Email = "other@example.com"
	assert.ErrorIs(t, repo.CreateUser(ctx, dupName), ErrUsernameExists)

	dupEmail := testutil.NewTestUser(t, "alice2")
	dupEmail.Email = alice.Email
	assert.ErrorIs(t, repo.CreateUser(ctx, dupEmail), ErrEmailExists)

	// Exact-match uniqueness: case variants are distinct users.
	require.NoError(t, repo.CreateUser(ctx, testutil.NewTestUser(t, "Alice")))

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Nil(t, got.LastLogin)

	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.UpdateLastLogin(ctx, alice.ID, at))
	require.NoError(t, repo.UpdatePasswordHash(ctx, alice.ID, "new-hash"))

	got, err = repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(at))
	assert.Equal(t, "new-hash", got.PasswordHash)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "missing", at), ErrUserNotFound)
}

func TestIntegrationResolveOwned_Chain(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice")
	profile := seedProfile(t, ctx, repo, alice.ID)

	txn := testutil.NewTestTransaction(t, profile.ID, model.EntryExpense, 12.5, "2026-03-04")
	require.NoError(t, repo.CreateTransaction(ctx, txn))

	res, err := repo.ResolveOwned(ctx, model.ResourceTransaction, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, res.ProfileID)
	assert.Equal(t, alice.ID, res.OwnerID)

	res, err = repo.ResolveOwned(ctx, model.ResourceProfile, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, res.ProfileID)

	_, err = repo.ResolveOwned(ctx, model.ResourceTag, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegrationMutations_RequireOwner(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice")
	bob := seedUser(t, ctx, repo, "bob")
	profile := seedProfile(t, ctx, repo, alice.ID)

	txn := testutil.NewTestTransaction(t, profile.ID, model.EntryIncome, 100, "2026-01-15")
	require.NoError(t, repo.CreateTransaction(ctx, txn))

	assert.ErrorIs(t, repo.DeleteTransaction(ctx, bob.ID, txn.ID), ErrNotFound)
	assert.ErrorIs(t, repo.RenameProfile(ctx, bob.ID, profile.ID, "Hijacked"), ErrNotFound)
	assert.ErrorIs(t, repo.DeleteProfile(ctx, bob.ID, profile.ID), ErrNotFound)

	require.NoError(t, repo.DeleteTransaction(ctx, alice.ID, txn.ID))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, alice.ID, txn.ID), ErrNotFound)
}

func TestIntegrationDeleteProfile_Cascades(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice")
	profile := seedProfile(t, ctx, repo, alice.ID)

	tag := &model.Tag{ID: testutil.UniqueID("tag"), ProfileID: profile.ID, Name: "trip", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateTag(ctx, tag))

	txn := testutil.NewTestTransaction(t, profile.ID, model.EntryExpense, 40, "2026-02-01")
	txn.TagIDs = []string{tag.ID, tag.ID}
	require.NoError(t, repo.CreateTransaction(ctx, txn))
	assert.Equal(t, []string{tag.ID}, txn.TagIDs)

	got, err := repo.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, got.TagIDs)
	assert.Equal(t, "2026-02-01", got.Date)
	assert.InDelta(t, 40, got.Amount, 0.001)

	require.NoError(t, repo.DeleteProfile(ctx, alice.ID, profile.ID))

	_, err = repo.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegrationCreateTransaction_RejectsForeignReferences(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice")
	bob := seedUser(t, ctx, repo, "bob")
	aliceProfile := seedProfile(t, ctx, repo, alice.ID)
	bobProfile := seedProfile(t, ctx, repo, bob.ID)

	bobTag := &model.Tag{ID: testutil.UniqueID("tag"), ProfileID: bobProfile.ID, Name: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateTag(ctx, bobTag))

	txn := testutil.NewTestTransaction(t, aliceProfile.ID, model.EntryExpense, 5, "2026-02-01")
	txn.TagIDs = []string{bobTag.ID}
	err := repo.CreateTransaction(ctx, txn)
	assert.True(t, errors.Is(err, ErrInvalidReference), "got %v", err)

	_, err = repo.GetTransaction(ctx, txn.ID)
	assert.ErrorIs(t, err, ErrNotFound, "rejected transaction must not be stored")
}

func TestIntegrationAccountBalanceAndBudgetSpent(t *testing.T) {
	ctx, repo := newTestEnv(t)

	alice := seedUser(t, ctx, repo, "alice")
	profile := seedProfile(t, ctx, repo, alice.ID)
	now := time.Now().UTC()

	acct := &model.Account{ID: testutil.UniqueID("acct"), ProfileID: profile.ID, Name: "Checking",
		Type: model.AccountChecking, Balance: 1000, Currency: "USD", CreatedAt: now}
	require.NoError(t, repo.CreateAccount(ctx, acct))

	food := &model.Category{ID: testutil.UniqueID("cat"), ProfileID: profile.ID, Name: "Food",
		Type: model.EntryExpense, CreatedAt: now}
	require.NoError(t, repo.CreateCategory(ctx, food))

	dup := *food
	dup.ID = testutil.UniqueID("cat")
	assert.ErrorIs(t, repo.CreateCategory(ctx, &dup), ErrConflict)

	for _, tx := range []*model.Transaction{
		testutil.NewTestTransaction(t, profile.ID, model.EntryIncome, 500, "2026-03-01"),
		testutil.NewTestTransaction(t, profile.ID, model.EntryExpense, 120, "2026-03-10"),
		testutil.NewTestTransaction(t, profile.ID, model.EntryExpense, 30, "2026-04-02"),
	} {
		tx.AccountID = &acct.ID
		if tx.Type == model.EntryExpense {
			tx.CategoryID = &food.ID
		}
		require.NoError(t, repo.CreateTransaction(ctx, tx))
	}

	gotAcct, err := repo.GetAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1350, gotAcct.CurrentBalance, 0.001)

	budget := &model.Budget{ID: testutil.UniqueID("budget"), ProfileID: profile.ID, CategoryID: &food.ID,
		Amount: 150, Month: 3, Year: 2026, AlertThreshold: 80, CreatedAt: now}
	require.NoError(t, repo.CreateBudget(ctx, budget))

	gotBudget, err := repo.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.InDelta(t, 120, gotBudget.Spent, 0.001)
	assert.True(t, gotBudget.AlertReached())

	budgets, err := repo.ListBudgets(ctx, profile.ID, 4, 2026)
	require.NoError(t, err)
	assert.Empty(t, budgets)

	missing := "missing"
	bad := &model.Budget{ID: testutil.UniqueID("budget"), ProfileID: profile.ID, CategoryID: &missing,
		Amount: 10, Month: 3, Year: 2026, AlertThreshold: 80, CreatedAt: now}
	assert.ErrorIs(t, repo.CreateBudget(ctx, bad), ErrInvalidReference)
}
