// Package memstore is an in-memory stand-in for the Postgres repository,
// used by tests that exercise services and HTTP wiring without a database.
// It honours the same sentinels, ownership predicates and cascades.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/repository"
)

// Store holds users and ledger data in maps.
type Store struct {
	mu           sync.Mutex
	users        map[string]*model.User
	profiles     map[string]*model.Profile
	transactions map[string]*model.Transaction
	categories   map[string]*model.Category
	accounts     map[string]*model.Account
	budgets      map[string]*model.Budget
	tags         map[string]*model.Tag
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]*model.User),
		profiles:     make(map[string]*model.Profile),
		transactions: make(map[string]*model.Transaction),
		categories:   make(map[string]*model.Category),
		accounts:     make(map[string]*model.Account),
		budgets:      make(map[string]*model.Budget),
		tags:         make(map[string]*model.Tag),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// ============================================================================
// Users
// ============================================================================

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *Store) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ============================================================================
// Ownership
// ============================================================================

// ResolveOwned follows the leaf -> profile -> user chain.
func (s *Store) ResolveOwned(_ context.Context, kind model.ResourceKind, id string) (*model.OwnedResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profileID, ok := s.profileOfLocked(kind, id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	p, ok := s.profiles[profileID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.OwnedResource{Kind: kind, ID: id, ProfileID: p.ID, OwnerID: p.UserID}, nil
}

func (s *Store) profileOfLocked(kind model.ResourceKind, id string) (string, bool) {
	switch kind {
	case model.ResourceProfile:
		_, ok := s.profiles[id]
		return id, ok
	case model.ResourceTransaction:
		if t, ok := s.transactions[id]; ok {
			return t.ProfileID, true
		}
	case model.ResourceCategory:
		if c, ok := s.categories[id]; ok {
			return c.ProfileID, true
		}
	case model.ResourceAccount:
		if a, ok := s.accounts[id]; ok {
			return a.ProfileID, true
		}
	case model.ResourceBudget:
		if b, ok := s.budgets[id]; ok {
			return b.ProfileID, true
		}
	case model.ResourceTag:
		if t, ok := s.tags[id]; ok {
			return t.ProfileID, true
		}
	}
	return "", false
}

// ownedLocked reports whether userID owns the resource.
func (s *Store) ownedLocked(kind model.ResourceKind, id, userID string) bool {
	profileID, ok := s.profileOfLocked(kind, id)
	if !ok {
		return false
	}
	p, ok := s.profiles[profileID]
	return ok && p.UserID == userID
}

// ============================================================================
// Profiles
// ============================================================================

func (s *Store) CreateProfile(_ context.Context, p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *Store) ListProfiles(_ context.Context, userID string) ([]*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Profile, 0)
	for _, p := range s.profiles {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) RenameProfile(_ context.Context, userID, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceProfile, id, userID) {
		return repository.ErrNotFound
	}
	s.profiles[id].Name = name
	return nil
}

// DeleteProfile cascades to every resource under the profile.
func (s *Store) DeleteProfile(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceProfile, id, userID) {
		return repository.ErrNotFound
	}
	delete(s.profiles, id)
	for k, v := range s.transactions {
		if v.ProfileID == id {
			delete(s.transactions, k)
		}
	}
	for k, v := range s.categories {
		if v.ProfileID == id {
			delete(s.categories, k)
		}
	}
	for k, v := range s.accounts {
		if v.ProfileID == id {
			delete(s.accounts, k)
		}
	}
	for k, v := range s.budgets {
		if v.ProfileID == id {
			delete(s.budgets, k)
		}
	}
	for k, v := range s.tags {
		if v.ProfileID == id {
			delete(s.tags, k)
		}
	}
	return nil
}

// ============================================================================
// Transactions
// ============================================================================

func (s *Store) CreateTransaction(_ context.Context, t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; !ok || c.ProfileID != t.ProfileID {
			return repository.ErrInvalidReference
		}
	}
	if t.AccountID != nil {
		if a, ok := s.accounts[*t.AccountID]; !ok || a.ProfileID != t.ProfileID {
			return repository.ErrInvalidReference
		}
	}
	tagIDs := make([]string, 0, len(t.TagIDs))
	for _, id := range t.TagIDs {
		if slices.Contains(tagIDs, id) {
			continue
		}
		if g, ok := s.tags[id]; !ok || g.ProfileID != t.ProfileID {
			return repository.ErrInvalidReference
		}
		tagIDs = append(tagIDs, id)
	}
	t.TagIDs = tagIDs
	s.transactions[t.ID] = copyTransaction(t)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.withLiveRefsLocked(t), nil
}

func (s *Store) ListTransactions(_ context.Context, profileID string, f repository.TransactionFilter) ([]*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Transaction, 0)
	for _, t := range s.transactions {
		if t.ProfileID != profileID || !matches(s.withLiveRefsLocked(t), f) {
			continue
		}
		out = append(out, s.withLiveRefsLocked(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*model.Transaction{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(t *model.Transaction, f repository.TransactionFilter) bool {
	switch {
	case f.Type != "" && t.Type != f.Type:
		return false
	case f.CategoryID != "" && (t.CategoryID == nil || *t.CategoryID != f.CategoryID):
		return false
	case f.AccountID != "" && (t.AccountID == nil || *t.AccountID != f.AccountID):
		return false
	case f.TagID != "" && !slices.Contains(t.TagIDs, f.TagID):
		return false
	case f.From != "" && t.Date < f.From:
		return false
	case f.To != "" && t.Date > f.To:
		return false
	}
	return true
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceTransaction, id, userID) {
		return repository.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

// withLiveRefsLocked mirrors ON DELETE SET NULL and tag-link cascades.
func (s *Store) withLiveRefsLocked(t *model.Transaction) *model.Transaction {
	cp := copyTransaction(t)
	if cp.CategoryID != nil {
		if _, ok := s.categories[*cp.CategoryID]; !ok {
			cp.CategoryID = nil
		}
	}
	if cp.AccountID != nil {
		if _, ok := s.accounts[*cp.AccountID]; !ok {
			cp.AccountID = nil
		}
	}
	live := make([]string, 0, len(cp.TagIDs))
	for _, id := range cp.TagIDs {
		if _, ok := s.tags[id]; ok {
			live = append(live, id)
		}
	}
	sort.Strings(live)
	cp.TagIDs = live
	return cp
}

func copyTransaction(t *model.Transaction) *model.Transaction {
	cp := *t
	cp.TagIDs = slices.Clone(t.TagIDs)
	if cp.TagIDs == nil {
		cp.TagIDs = []string{}
	}
	return &cp
}

// ============================================================================
// Categories
// ============================================================================

func (s *Store) CreateCategory(_ context.Context, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.ProfileID == c.ProfileID && existing.Name == c.Name && existing.Type == c.Type {
			return repository.ErrConflict
		}
	}
	cp := *c
	s.categories[c.ID] = &cp
	return nil
}

func (s *Store) ListCategories(_ context.Context, profileID string) ([]*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Category, 0)
	for _, c := range s.categories {
		if c.ProfileID == profileID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (*model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *Store) UpdateCategory(_ context.Context, userID string, c *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceCategory, c.ID, userID) {
		return repository.ErrNotFound
	}
	cur := s.categories[c.ID]
	for _, existing := range s.categories {
		if existing.ID != c.ID && existing.ProfileID == cur.ProfileID && existing.Name == c.Name && existing.Type == cur.Type {
			return repository.ErrConflict
		}
	}
	cur.Name, cur.Icon, cur.Color = c.Name, c.Icon, c.Color
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceCategory, id, userID) {
		return repository.ErrNotFound
	}
	delete(s.categories, id)
	for k, b := range s.budgets {
		if b.CategoryID != nil && *b.CategoryID == id {
			delete(s.budgets, k)
		}
	}
	return nil
}

// ============================================================================
// Accounts
// ============================================================================

func (s *Store) CreateAccount(_ context.Context, a *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.accounts[a.ID] = &cp
	a.CurrentBalance = a.Balance
	return nil
}

func (s *Store) ListAccounts(_ context.Context, profileID string) ([]*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Account, 0)
	for _, a := range s.accounts {
		if a.ProfileID == profileID {
			out = append(out, s.withBalanceLocked(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetAccount(_ context.Context, id string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.withBalanceLocked(a), nil
}

func (s *Store) withBalanceLocked(a *model.Account) *model.Account {
	cp := *a
	cp.CurrentBalance = a.Balance
	for _, t := range s.transactions {
		if t.AccountID != nil && *t.AccountID == a.ID {
			cp.CurrentBalance += t.SignedAmount()
		}
	}
	return &cp
}

func (s *Store) UpdateAccount(_ context.Context, userID string, a *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceAccount, a.ID, userID) {
		return repository.ErrNotFound
	}
	cur := s.accounts[a.ID]
	cur.Name, cur.Type, cur.Balance, cur.Currency = a.Name, a.Type, a.Balance, a.Currency
	cur.Icon, cur.Color = a.Icon, a.Color
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceAccount, id, userID) {
		return repository.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// ============================================================================
// Budgets
// ============================================================================

func (s *Store) CreateBudget(_ context.Context, b *model.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.CategoryID != nil {
		if c, ok := s.categories[*b.CategoryID]; !ok || c.ProfileID != b.ProfileID {
			return repository.ErrInvalidReference
		}
	}
	cp := *b
	s.budgets[b.ID] = &cp
	return nil
}

func (s *Store) ListBudgets(_ context.Context, profileID string, month, year int) ([]*model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Budget, 0)
	for _, b := range s.budgets {
		if b.ProfileID != profileID || (month > 0 && b.Month != month) || (year > 0 && b.Year != year) {
			continue
		}
		out = append(out, s.withSpentLocked(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month > out[j].Month
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetBudget(_ context.Context, id string) (*model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.withSpentLocked(b), nil
}

func (s *Store) withSpentLocked(b *model.Budget) *model.Budget {
	cp := *b
	cp.Spent = 0
	prefix := time.Date(b.Year, time.Month(b.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	for _, t := range s.transactions {
		if t.ProfileID != b.ProfileID || t.Type != model.EntryExpense || !strings.HasPrefix(t.Date, prefix) {
			continue
		}
		if b.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *b.CategoryID) {
			continue
		}
		cp.Spent += t.Amount
	}
	return &cp
}

func (s *Store) UpdateBudget(_ context.Context, userID string, b *model.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceBudget, b.ID, userID) {
		return repository.ErrNotFound
	}
	cur := s.budgets[b.ID]
	cur.Amount, cur.AlertThreshold = b.Amount, b.AlertThreshold
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceBudget, id, userID) {
		return repository.ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

// ============================================================================
// Tags
// ============================================================================

func (s *Store) CreateTag(_ context.Context, t *model.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tags {
		if existing.ProfileID == t.ProfileID && existing.Name == t.Name {
			return repository.ErrConflict
		}
	}
	cp := *t
	s.tags[t.ID] = &cp
	return nil
}

func (s *Store) ListTags(_ context.Context, profileID string) ([]*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Tag, 0)
	for _, t := range s.tags {
		if t.ProfileID == profileID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetTag(_ context.Context, id string) (*model.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) DeleteTag(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownedLocked(model.ResourceTag, id, userID) {
		return repository.ErrNotFound
	}
	delete(s.tags, id)
	return nil
}
