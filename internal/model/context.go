package model

import "context"

// ContextManager moves the verified Principal in and out of a request
// context. Transport adapters own the concrete representation.
type ContextManager interface {
	SetPrincipal(ctx context.Context, principal Principal) context.Context
	GetPrincipal(ctx context.Context) (Principal, bool)
}
