// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
)

// ErrInvalidAmount is returned when an amount is neither a number nor a numeric string.
var ErrInvalidAmount = errors.New("amount must be a number")

// Amount accepts a JSON number or a numeric string such as "12.50".
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidAmount
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	*a = Amount(f)
	return nil
}

// Float returns the amount as a float64.
func (a Amount) Float() float64 { return float64(a) }

// ============================================================================
// Auth
// ============================================================================

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string           `json:"message"`
	User    model.PublicUser `json:"user"`
}

// CheckAuthResponse is returned by GET /api/check-auth.
type CheckAuthResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *model.PublicUser `json:"user,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Ledger
// ============================================================================

// ProfileRequest is the body for creating or renaming a profile.
type ProfileRequest struct {
	Name string `json:"name"`
}

// TransactionRequest is the body of POST /api/profiles/{id}/transactions.
type TransactionRequest struct {
	Type        string   `json:"type"`
	Amount      Amount   `json:"amount"`
	Category    string   `json:"category"`
	CategoryID  string   `json:"category_id,omitempty"`
	AccountID   string   `json:"account_id,omitempty"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	TagIDs      []string `json:"tag_ids,omitempty"`
}

// CategoryRequest is the body for creating a category.
type CategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// CategoryPatch is the body of PATCH /api/categories/{id}. Absent fields are unchanged.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// AccountRequest is the body for creating an account.
type AccountRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Balance  Amount `json:"balance"`
	Currency string `json:"currency,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}

// AccountPatch is the body of PATCH /api/accounts/{id}.
type AccountPatch struct {
	Name     *string `json:"name,omitempty"`
	Type     *string `json:"type,omitempty"`
	Balance  *Amount `json:"balance,omitempty"`
	Currency *string `json:"currency,omitempty"`
	Icon     *string `json:"icon,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// BudgetRequest is the body for creating a budget.
type BudgetRequest struct {
	CategoryID     string `json:"category_id,omitempty"`
	Amount         Amount `json:"amount"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	AlertThreshold int    `json:"alert_threshold,omitempty"`
}

// BudgetPatch is the body of PATCH /api/budgets/{id}.
type BudgetPatch struct {
	Amount         *Amount `json:"amount,omitempty"`
	AlertThreshold *int    `json:"alert_threshold,omitempty"`
}

// BudgetResponse adds derived spending figures to a budget.
type BudgetResponse struct {
	*model.Budget
	Remaining    float64 `json:"remaining"`
	AlertReached bool    `json:"alert_reached"`
}

// ToBudgetResponse converts a Budget model to BudgetResponse DTO.
func ToBudgetResponse(b *model.Budget) BudgetResponse {
	return BudgetResponse{
		Budget:       b,
		Remaining:    b.Remaining(),
		AlertReached: b.AlertReached(),
	}
}

// ToBudgetResponses converts a slice of budgets.
func ToBudgetResponses(bs []*model.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, ToBudgetResponse(b))
	}
	return out
}

// TagRequest is the body for creating a tag.
type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// FloatPtr converts an optional Amount.
func FloatPtr(a *Amount) *float64 {
	if a == nil {
		return nil
	}
	f := float64(*a)
	return &f
}
