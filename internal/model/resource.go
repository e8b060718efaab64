package model

// ResourceKind names an entity type reachable through the ownership chain
// User -> Profile -> {Transaction, Category, Account, Budget, Tag}.
type ResourceKind string

const (
	ResourceProfile     ResourceKind = "profile"
	ResourceTransaction ResourceKind = "transaction"
	ResourceCategory    ResourceKind = "category"
	ResourceAccount     ResourceKind = "account"
	ResourceBudget      ResourceKind = "budget"
	ResourceTag         ResourceKind = "tag"
)

// ResourceKinds lists every kind the ownership resolver understands.
var ResourceKinds = []ResourceKind{
	ResourceProfile,
	ResourceTransaction,
	ResourceCategory,
	ResourceAccount,
	ResourceBudget,
	ResourceTag,
}

// IsValid reports whether k is a known resource kind.
func (k ResourceKind) IsValid() bool {
	for _, known := range ResourceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ResourceRef identifies a resource a request wants to act on.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// OwnedResource is a resource resolved through its ownership chain.
// For profiles ProfileID equals ID.
type OwnedResource struct {
	Kind      ResourceKind
	ID        string
	ProfileID string
	OwnerID   string
}
