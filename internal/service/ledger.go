package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/metrics"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/repository"
)

const (
	maxAmount            = 999999999
	maxNameLength        = 100
	maxTagNameLength     = 50
	maxDescriptionLength = 500
	maxIconLength        = 50
	maxColorLength       = 20
	defaultAlert         = 80
	defaultCurrency      = "USD"
)

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// LedgerStore persists profiles and everything under them.
// Mutations take the acting user so ownership is re-checked at write time.
type LedgerStore interface {
	CreateProfile(ctx context.Context, p *model.Profile) error
	ListProfiles(ctx context.Context, userID string) ([]*model.Profile, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	RenameProfile(ctx context.Context, userID, id, name string) error
	DeleteProfile(ctx context.Context, userID, id string) error

	CreateTransaction(ctx context.Context, t *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, profileID string, f repository.TransactionFilter) ([]*model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error

	CreateCategory(ctx context.Context, c *model.Category) error
	ListCategories(ctx context.Context, profileID string) ([]*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	UpdateCategory(ctx context.Context, userID string, c *model.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error

	CreateAccount(ctx context.Context, a *model.Account) error
	ListAccounts(ctx context.Context, profileID string) ([]*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	UpdateAccount(ctx context.Context, userID string, a *model.Account) error
	DeleteAccount(ctx context.Context, userID, id string) error

	CreateBudget(ctx context.Context, b *model.Budget) error
	ListBudgets(ctx context.Context, profileID string, month, year int) ([]*model.Budget, error)
	GetBudget(ctx context.Context, id string) (*model.Budget, error)
	UpdateBudget(ctx context.Context, userID string, b *model.Budget) error
	DeleteBudget(ctx context.Context, userID, id string) error

	CreateTag(ctx context.Context, t *model.Tag) error
	ListTags(ctx context.Context, profileID string) ([]*model.Tag, error)
	GetTag(ctx context.Context, id string) (*model.Tag, error)
	DeleteTag(ctx context.Context, userID, id string) error
}

// LedgerService validates and stores ledger data. Callers have already
// authorized access to the profile or resource they pass in.
type LedgerService struct {
	store   LedgerStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store LedgerStore, recorder metrics.Recorder) *LedgerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LedgerService{store: store, metrics: recorder, now: nowUTC}
}

// mapStoreError translates repository sentinels into service errors.
func mapStoreError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	case errors.Is(err, repository.ErrInvalidReference):
		return invalid("references", "Referenced category, account or tag does not exist in this profile")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *LedgerService) created(kind model.ResourceKind) {
	s.metrics.IncResourceCreated(string(kind))
}

func (s *LedgerService) deleted(kind model.ResourceKind) {
	s.metrics.IncResourceDeleted(string(kind))
}

// ============================================================================
// Profiles
// ============================================================================

func validateProfileName(name string) error {
	if name == "" {
		return invalid("name", "Profile name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return invalid("name", "Profile name is too long (max 100 characters)")
	}
	return nil
}

// CreateProfile creates a profile for userID.
func (s *LedgerService) CreateProfile(ctx context.Context, userID, name string) (*model.Profile, error) {
	name = auth.SanitizeString(name)
	if err := validateProfileName(name); err != nil {
		return nil, err
	}

	p := &model.Profile{ID: newID(), UserID: userID, Name: name, CreatedAt: s.now()}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, mapStoreError(err, "create profile")
	}
	s.created(model.ResourceProfile)
	return p, nil
}

// ListProfiles returns the user's profiles.
func (s *LedgerService) ListProfiles(ctx context.Context, userID string) ([]*model.Profile, error) {
	out, err := s.store.ListProfiles(ctx, userID)
	return out, mapStoreError(err, "list profiles")
}

// GetProfile loads a profile.
func (s *LedgerService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	return p, mapStoreError(err, "get profile")
}

// RenameProfile changes a profile name.
func (s *LedgerService) RenameProfile(ctx context.Context, userID, id, name string) (*model.Profile, error) {
	name = auth.SanitizeString(name)
	if err := validateProfileName(name); err != nil {
		return nil, err
	}
	if err := s.store.RenameProfile(ctx, userID, id, name); err != nil {
		return nil, mapStoreError(err, "rename profile")
	}
	return s.GetProfile(ctx, id)
}

// DeleteProfile removes a profile with all its ledger data.
func (s *LedgerService) DeleteProfile(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteProfile(ctx, userID, id); err != nil {
		return mapStoreError(err, "delete profile")
	}
	s.deleted(model.ResourceProfile)
	return nil
}

// ============================================================================
// Transactions
// ============================================================================

// TransactionInput defines input for creating a transaction.
type TransactionInput struct {
	Type        string
	Amount      float64
	Category    string
	CategoryID  string
	AccountID   string
	Description string
	Date        string
	TagIDs      []string
}

// ValidateTransaction checks a transaction input and returns the first failure.
func ValidateTransaction(in TransactionInput) error {
	if !model.EntryType(in.Type).IsValid() {
		return invalid("type", `Type must be either "income" or "expense"`)
	}
	if in.Amount <= 0 {
		return invalid("amount", "Amount must be greater than 0")
	}
	if in.Amount > maxAmount {
		return invalid("amount", "Amount is too large")
	}
	if strings.TrimSpace(in.Category) == "" {
		return invalid("category", "Category is required")
	}
	if utf8.RuneCountInString(in.Category) > maxNameLength {
		return invalid("category", "Category is too long (max 100 characters)")
	}
	if in.Date == "" {
		return invalid("date", "Date is required")
	}
	if _, err := time.Parse(model.DateLayout, in.Date); err != nil {
		return invalid("date", "Invalid date format. Use YYYY-MM-DD")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLength {
		return invalid("description", "Description is too long (max 500 characters)")
	}
	return nil
}

// CreateTransaction adds a transaction to profileID.
func (s *LedgerService) CreateTransaction(ctx context.Context, profileID string, in TransactionInput) (*model.Transaction, error) {
	in.Category = auth.SanitizeString(in.Category)
	in.Description = auth.SanitizeString(in.Description)
	in.Date = auth.SanitizeString(in.Date)
	if err := ValidateTransaction(in); err != nil {
		return nil, err
	}

	t := &model.Transaction{
		ID:          newID(),
		ProfileID:   profileID,
		Type:        model.EntryType(in.Type),
		Amount:      in.Amount,
		Category:    in.Category,
		CategoryID:  optional(in.CategoryID),
		AccountID:   optional(in.AccountID),
		Description: in.Description,
		Date:        in.Date,
		TagIDs:      in.TagIDs,
		CreatedAt:   s.now(),
	}
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return nil, mapStoreError(err, "create transaction")
	}
	s.created(model.ResourceTransaction)
	return t, nil
}

// ListTransactions returns a profile's transactions matching f.
func (s *LedgerService) ListTransactions(ctx context.Context, profileID string, f repository.TransactionFilter) ([]*model.Transaction, error) {
	if f.Type != "" && !f.Type.IsValid() {
		return nil, invalid("type", `Type must be either "income" or "expense"`)
	}
	for _, d := range []struct{ field, value string }{{"from", f.From}, {"to", f.To}} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d.value); err != nil {
			return nil, invalid(d.field, "Invalid date format. Use YYYY-MM-DD")
		}
	}
	out, err := s.store.ListTransactions(ctx, profileID, f)
	return out, mapStoreError(err, "list transactions")
}

// GetTransaction loads a transaction.
func (s *LedgerService) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	return t, mapStoreError(err, "get transaction")
}

// DeleteTransaction removes a transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return mapStoreError(err, "delete transaction")
	}
	s.deleted(model.ResourceTransaction)
	return nil
}

// ============================================================================
// Categories
// ============================================================================

// CategoryInput defines input for creating a category.
type CategoryInput struct {
	Name  string
	Type  string
	Icon  string
	Color string
}

// CategoryUpdate holds the fields a PATCH may change. Nil means unchanged.
type CategoryUpdate struct {
	Name  *string
	Icon  *string
	Color *string
}

func validateCategory(c *model.Category) error {
	n := utf8.RuneCountInString(c.Name)
	if n < 2 || n > maxNameLength {
		return invalid("name", "Category name must be between 2 and 100 characters")
	}
	if !c.Type.IsValid() {
		return invalid("type", `Type must be either "income" or "expense"`)
	}
	return validateDecor(c.Icon, c.Color)
}

func validateDecor(icon, color string) error {
	if utf8.RuneCountInString(icon) > maxIconLength {
		return invalid("icon", "Icon is too long (max 50 characters)")
	}
	if utf8.RuneCountInString(color) > maxColorLength {
		return invalid("color", "Color is too long (max 20 characters)")
	}
	return nil
}

// CreateCategory adds a category to profileID.
func (s *LedgerService) CreateCategory(ctx context.Context, profileID string, in CategoryInput) (*model.Category, error) {
	c := &model.Category{
		ID:        newID(),
		ProfileID: profileID,
		Name:      auth.SanitizeString(in.Name),
		Type:      model.EntryType(in.Type),
		Icon:      auth.SanitizeString(in.Icon),
		Color:     auth.SanitizeString(in.Color),
		CreatedAt: s.now(),
	}
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, mapStoreError(err, "create category")
	}
	s.created(model.ResourceCategory)
	return c, nil
}

// ListCategories returns a profile's categories.
func (s *LedgerService) ListCategories(ctx context.Context, profileID string) ([]*model.Category, error) {
	out, err := s.store.ListCategories(ctx, profileID)
	return out, mapStoreError(err, "list categories")
}

// GetCategory loads a category.
func (s *LedgerService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	return c, mapStoreError(err, "get category")
}

// UpdateCategory applies a partial update.
func (s *LedgerService) UpdateCategory(ctx context.Context, userID, id string, in CategoryUpdate) (*model.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	applyString(&c.Name, in.Name)
	applyString(&c.Icon, in.Icon)
	applyString(&c.Color, in.Color)
	if err := validateCategory(c); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategory(ctx, userID, c); err != nil {
		return nil, mapStoreError(err, "update category")
	}
	return c, nil
}

// DeleteCategory removes a category.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return mapStoreError(err, "delete category")
	}
	s.deleted(model.ResourceCategory)
	return nil
}

// ============================================================================
// Accounts
// ============================================================================

// AccountInput defines input for creating an account.
type AccountInput struct {
	Name     string
	Type     string
	Balance  float64
	Currency string
	Icon     string
	Color    string
}

// AccountUpdate holds the fields a PATCH may change. Nil means unchanged.
type AccountUpdate struct {
	Name     *string
	Type     *string
	Balance  *float64
	Currency *string
	Icon     *string
	Color    *string
}

func validateAccount(a *model.Account) error {
	n := utf8.RuneCountInString(a.Name)
	if n < 2 || n > maxNameLength {
		return invalid("name", "Account name must be between 2 and 100 characters")
	}
	if !a.Type.IsValid() {
		return invalid("type", "Invalid account type")
	}
	if a.Balance > maxAmount || a.Balance < -maxAmount {
		return invalid("balance", "Balance is too large")
	}
	if !currencyRegex.MatchString(a.Currency) {
		return invalid("currency", "Currency must be a 3-letter code")
	}
	return validateDecor(a.Icon, a.Color)
}

// CreateAccount adds an account to profileID.
func (s *LedgerService) CreateAccount(ctx context.Context, profileID string, in AccountInput) (*model.Account, error) {
	a := &model.Account{
		ID:        newID(),
		ProfileID: profileID,
		Name:      auth.SanitizeString(in.Name),
		Type:      model.AccountType(in.Type),
		Balance:   in.Balance,
		Currency:  strings.ToUpper(auth.SanitizeString(in.Currency)),
		Icon:      auth.SanitizeString(in.Icon),
		Color:     auth.SanitizeString(in.Color),
		CreatedAt: s.now(),
	}
	if a.Type == "" {
		a.Type = model.AccountChecking
	}
	if a.Currency == "" {
		a.Currency = defaultCurrency
	}
	if err := validateAccount(a); err != nil {
		return nil, err
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, mapStoreError(err, "create account")
	}
	s.created(model.ResourceAccount)
	return a, nil
}

// ListAccounts returns a profile's accounts with current balances.
func (s *LedgerService) ListAccounts(ctx context.Context, profileID string) ([]*model.Account, error) {
	out, err := s.store.ListAccounts(ctx, profileID)
	return out, mapStoreError(err, "list accounts")
}

// GetAccount loads an account with its current balance.
func (s *LedgerService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	a, err := s.store.GetAccount(ctx, id)
	return a, mapStoreError(err, "get account")
}

// UpdateAccount applies a partial update and returns the refreshed account.
func (s *LedgerService) UpdateAccount(ctx context.Context, userID, id string, in AccountUpdate) (*model.Account, error) {
	a, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	applyString(&a.Name, in.Name)
	if in.Type != nil {
		a.Type = model.AccountType(*in.Type)
	}
	if in.Balance != nil {
		a.Balance = *in.Balance
	}
	if in.Currency != nil {
		a.Currency = strings.ToUpper(auth.SanitizeString(*in.Currency))
	}
	applyString(&a.Icon, in.Icon)
	applyString(&a.Color, in.Color)
	if err := validateAccount(a); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAccount(ctx, userID, a); err != nil {
		return nil, mapStoreError(err, "update account")
	}
	return s.GetAccount(ctx, id)
}

// DeleteAccount removes an account.
func (s *LedgerService) DeleteAccount(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteAccount(ctx, userID, id); err != nil {
		return mapStoreError(err, "delete account")
	}
	s.deleted(model.ResourceAccount)
	return nil
}

// ============================================================================
// Budgets
// ============================================================================

// BudgetInput defines input for creating a budget.
type BudgetInput struct {
	CategoryID     string
	Amount         float64
	Month          int
	Year           int
	AlertThreshold int
}

// BudgetUpdate holds the fields a PATCH may change. Nil means unchanged.
type BudgetUpdate struct {
	Amount         *float64
	AlertThreshold *int
}

// ValidatePeriod checks a month and year pair.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return invalid("month", "Month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return invalid("year", "Year must be between 2000 and 2100")
	}
	return nil
}

func validateBudget(b *model.Budget) error {
	if b.Amount <= 0 {
		return invalid("amount", "Amount must be greater than 0")
	}
	if b.Amount > maxAmount {
		return invalid("amount", "Amount is too large")
	}
	if err := ValidatePeriod(b.Month, b.Year); err != nil {
		return err
	}
	if b.AlertThreshold < 1 || b.AlertThreshold > 100 {
		return invalid("alert_threshold", "Alert threshold must be between 1 and 100")
	}
	return nil
}

// CreateBudget adds a budget to profileID. A zero alert threshold means the default.
func (s *LedgerService) CreateBudget(ctx context.Context, profileID string, in BudgetInput) (*model.Budget, error) {
	b := &model.Budget{
		ID:             newID(),
		ProfileID:      profileID,
		CategoryID:     optional(in.CategoryID),
		Amount:         in.Amount,
		Month:          in.Month,
		Year:           in.Year,
		AlertThreshold: in.AlertThreshold,
		CreatedAt:      s.now(),
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = defaultAlert
	}
	if err := validateBudget(b); err != nil {
		return nil, err
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, mapStoreError(err, "create budget")
	}
	s.created(model.ResourceBudget)
	return s.GetBudget(ctx, b.ID)
}

// ListBudgets returns a profile's budgets, optionally for one period.
// Zero month or year disables that filter.
func (s *LedgerService) ListBudgets(ctx context.Context, profileID string, month, year int) ([]*model.Budget, error) {
	if month != 0 && (month < 1 || month > 12) {
		return nil, invalid("month", "Month must be between 1 and 12")
	}
	out, err := s.store.ListBudgets(ctx, profileID, month, year)
	return out, mapStoreError(err, "list budgets")
}

// GetBudget loads a budget with its spent total.
func (s *LedgerService) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	b, err := s.store.GetBudget(ctx, id)
	return b, mapStoreError(err, "get budget")
}

// UpdateBudget applies a partial update and returns the refreshed budget.
func (s *LedgerService) UpdateBudget(ctx context.Context, userID, id string, in BudgetUpdate) (*model.Budget, error) {
	b, err := s.GetBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Amount != nil {
		b.Amount = *in.Amount
	}
	if in.AlertThreshold != nil {
		b.AlertThreshold = *in.AlertThreshold
	}
	if err := validateBudget(b); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBudget(ctx, userID, b); err != nil {
		return nil, mapStoreError(err, "update budget")
	}
	return s.GetBudget(ctx, id)
}

// DeleteBudget removes a budget.
func (s *LedgerService) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return mapStoreError(err, "delete budget")
	}
	s.deleted(model.ResourceBudget)
	return nil
}

// ============================================================================
// Tags
// ============================================================================

// CreateTag adds a tag to profileID.
func (s *LedgerService) CreateTag(ctx context.Context, profileID, name, color string) (*model.Tag, error) {
	t := &model.Tag{
		ID:        newID(),
		ProfileID: profileID,
		Name:      auth.SanitizeString(name),
		Color:     auth.SanitizeString(color),
		CreatedAt: s.now(),
	}
	n := utf8.RuneCountInString(t.Name)
	if n < 1 || n > maxTagNameLength {
		return nil, invalid("name", "Tag name must be between 1 and 50 characters")
	}
	if err := validateDecor("", t.Color); err != nil {
		return nil, err
	}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, mapStoreError(err, "create tag")
	}
	s.created(model.ResourceTag)
	return t, nil
}

// ListTags returns a profile's tags.
func (s *LedgerService) ListTags(ctx context.Context, profileID string) ([]*model.Tag, error) {
	out, err := s.store.ListTags(ctx, profileID)
	return out, mapStoreError(err, "list tags")
}

// GetTag loads a tag.
func (s *LedgerService) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	t, err := s.store.GetTag(ctx, id)
	return t, mapStoreError(err, "get tag")
}

// DeleteTag removes a tag.
func (s *LedgerService) DeleteTag(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTag(ctx, userID, id); err != nil {
		return mapStoreError(err, "delete tag")
	}
	s.deleted(model.ResourceTag)
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = auth.SanitizeString(*v)
	}
}
