// Package authz decides whether the authenticated user may act on a resource.
// Resources are reached through the chain User -> Profile -> leaf; a resource
// owned by someone else is reported exactly like a missing one.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/auth"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/repository"
)

var (
	// ErrUnauthenticated means no validated identity is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound covers both missing resources and resources owned by another user.
	ErrNotFound = errors.New("resource not found")
)

// Resolver loads a resource with its owning profile and user.
// It returns repository.ErrNotFound when any link of the chain is absent.
type Resolver interface {
	ResolveOwned(ctx context.Context, kind model.ResourceKind, id string) (*model.OwnedResource, error)
}

// Resolved is the verdict handed to handlers after a successful check.
type Resolved struct {
	Identity *model.Identity
	Resource *model.OwnedResource
}

// Guard checks resource ownership.
type Guard struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewGuard creates a Guard.
func NewGuard(resolver Resolver, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{resolver: resolver, logger: logger}
}

// Authorize verifies that the identity in ctx owns ref.
func (g *Guard) Authorize(ctx context.Context, ref model.ResourceRef) (*Resolved, error) {
	identity := auth.IdentityFromContext(ctx)
	if identity == nil || identity.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !ref.Kind.IsValid() || ref.ID == "" {
		return nil, ErrNotFound
	}

	res, err := g.resolver.ResolveOwned(ctx, ref.Kind, ref.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve %s: %w", ref.Kind, err)
	}

	if res.OwnerID != identity.UserID {
		g.logger.Warn("cross-user access denied",
			"kind", ref.Kind,
			"resource_id", ref.ID,
			"user_id", identity.UserID,
		)
		return nil, ErrNotFound
	}

	return &Resolved{Identity: identity, Resource: res}, nil
}
