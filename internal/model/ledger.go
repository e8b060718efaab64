package model

import "time"

// EntryType is the direction of money for transactions and categories.
type EntryType string

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

// IsValid checks if the entry type is income or expense.
func (t EntryType) IsValid() bool {
	return t == EntryIncome || t == EntryExpense
}

// AccountType classifies where money is held.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountCash       AccountType = "cash"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// IsValid checks the account type against the known set.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// DateLayout is the wire and storage format of transaction dates.
const DateLayout = "2006-01-02"

// Profile groups a user's ledger data. Deleting a profile deletes everything under it.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string    `json:"id"`
	ProfileID   string    `json:"profile_id"`
	Type        EntryType `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	CategoryID  *string   `json:"category_id,omitempty"`
	AccountID   *string   `json:"account_id,omitempty"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	TagIDs      []string  `json:"tag_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignedAmount returns the amount with expenses negated.
func (t *Transaction) SignedAmount() float64 {
	if t.Type == EntryExpense {
		return -t.Amount
	}
	return t.Amount
}

// Category is a user-defined label for transactions.
type Category struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Name      string    `json:"name"`
	Type      EntryType `json:"type"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is a place money is held. Balance is the opening balance;
// CurrentBalance adds the signed sum of linked transactions.
type Account struct {
	ID             string      `json:"id"`
	ProfileID      string      `json:"profile_id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Balance        float64     `json:"balance"`
	CurrentBalance float64     `json:"current_balance"`
	Currency       string      `json:"currency"`
	Icon           string      `json:"icon"`
	Color          string      `json:"color"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Budget caps expenses for a month, optionally for one category.
type Budget struct {
	ID             string    `json:"id"`
	ProfileID      string    `json:"profile_id"`
	CategoryID     *string   `json:"category_id,omitempty"`
	Amount         float64   `json:"amount"`
	Month          int       `json:"month"`
	Year           int       `json:"year"`
	AlertThreshold int       `json:"alert_threshold"`
	Spent          float64   `json:"spent"`
	CreatedAt      time.Time `json:"created_at"`
}

// Remaining is the unspent part of the budget. It can go negative.
func (b *Budget) Remaining() float64 {
	return b.Amount - b.Spent
}

// AlertReached reports whether spending crossed the alert threshold percentage.
func (b *Budget) AlertReached() bool {
	if b.Amount <= 0 {
		return false
	}
	return b.Spent*100 >= b.Amount*float64(b.AlertThreshold)
}

// Tag is a free-form label attachable to many transactions.
type Tag struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
