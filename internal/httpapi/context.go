package httpapi

import (
	"context"

	"github.com/dkovalev/deskflow-server/internal/model"
)

type contextKey int

const principalKey contextKey = iota

var _ model.ContextManager = (*ContextManager)(nil)

// ContextManager stores the verified Principal as a request context
// value, the HTTP counterpart of the gRPC metadata manager.
type ContextManager struct{}

// NewContextManager creates a new HTTP context manager instance.
func NewContextManager() *ContextManager {
	return &ContextManager{}
}

// SetPrincipal returns a context carrying the principal.
func (m *ContextManager) SetPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal reads the principal back out of the context.
func (m *ContextManager) GetPrincipal(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(model.Principal)
	return principal, ok
}
