package authz

import "context"

type contextKey struct{}

// ContextWithResolved attaches an authorization verdict to ctx.
func ContextWithResolved(ctx context.Context, r *Resolved) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// ResolvedFromContext returns the verdict set by RequireOwnership, or nil.
func ResolvedFromContext(ctx context.Context) *Resolved {
	r, _ := ctx.Value(contextKey{}).(*Resolved)
	return r
}
