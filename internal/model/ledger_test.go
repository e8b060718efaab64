package model

import "testing"

func TestEntryType_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   EntryType
		want bool
	}{
		{EntryIncome, true},
		{EntryExpense, true},
		{"transfer", false},
		{"", false},
		{"Income", false},
	}

	for _, tt := range tests {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("EntryType(%q).IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAccountType_IsValid(t *testing.T) {
	t.Parallel()

	for _, at := range []AccountType{AccountChecking, AccountSavings, AccountCredit, AccountCash, AccountInvestment, AccountOther} {
		if !at.IsValid() {
			t.Errorf("AccountType(%q) should be valid", at)
		}
	}
	if AccountType("crypto").IsValid() {
		t.Error("unknown account type should be invalid")
	}
}

func TestTransaction_SignedAmount(t *testing.T) {
	t.Parallel()

	income := &Transaction{Type: EntryIncome, Amount: 120.5}
	expense := &Transaction{Type: EntryExpense, Amount: 20}

	if got := income.SignedAmount(); got != 120.5 {
		t.Errorf("income SignedAmount() = %v, want 120.5", got)
	}
	if got := expense.SignedAmount(); got != -20 {
		t.Errorf("expense SignedAmount() = %v, want -20", got)
	}
}

func TestBudget_AlertReached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		b     Budget
		alert bool
		left  float64
	}{
		{"under threshold", Budget{Amount: 100, Spent: 50, AlertThreshold: 80}, false, 50},
		{"at threshold", Budget{Amount: 100, Spent: 80, AlertThreshold: 80}, true, 20},
		{"overspent", Budget{Amount: 100, Spent: 130, AlertThreshold: 80}, true, -30},
		{"zero amount", Budget{Amount: 0, Spent: 10, AlertThreshold: 80}, false, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.b.AlertReached(); got != tt.alert {
				t.Errorf("AlertReached() = %v, want %v", got, tt.alert)
			}
			if got := tt.b.Remaining(); got != tt.left {
				t.Errorf("Remaining() = %v, want %v", got, tt.left)
			}
		})
	}
}

func TestResourceKind_IsValid(t *testing.T) {
	t.Parallel()

	for _, k := range ResourceKinds {
		if !k.IsValid() {
			t.Errorf("ResourceKind(%q) should be valid", k)
		}
	}
	if ResourceKind("user").IsValid() {
		t.Error("user is not an owned resource kind")
	}
}

func TestUser_PublicOmitsHash(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "$argon2id$..."}
	p := u.Public()
	if p.ID != "u1" || p.Username != "alice" || p.Email != "a@example.com" {
		t.Errorf("Public() = %+v", p)
	}
}
