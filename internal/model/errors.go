package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Authorization failure taxonomy. Every rejection produced by the
// authorization core is one of these sentinels (or an *EvaluationError).
// Caller-visible messages never include session IDs or rotation counters.
var (
	// ErrUnauthenticated covers missing, malformed, invalid and expired
	// access tokens alike at the pipeline boundary.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrMissingRole means the caller is authenticated but its role does
	// not dominate any required role.
	ErrMissingRole = errors.New("missing required role")

	// ErrInsufficientAccess means the caller's resolved access level for
	// the target instance is below the required level.
	ErrInsufficientAccess = errors.New("insufficient access level")

	// ErrSessionRevoked is returned on refresh against a dead session.
	ErrSessionRevoked = errors.New("session revoked")

	// ErrTokenReuse marks a rotation-counter mismatch during refresh.
	// It is a security event: the whole session is revoked before this
	// error is returned.
	ErrTokenReuse = errors.New("refresh token reuse detected")

	// ErrLinkIntentInvalid covers expired, already consumed and malformed
	// link intents presented a second time or out of band.
	ErrLinkIntentInvalid = errors.New("link intent invalid")
)

// Token verification failures, produced by the token manager.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token signature invalid")
	ErrTokenMalformed = errors.New("token malformed")
)

// EvaluationError reports that an ownership lookup itself failed. It is
// deliberately distinct from a denial so callers can tell "user may not"
// from "we could not determine".
type EvaluationError struct {
	Ref ResourceRef
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("access evaluation failed for %s/%s: %v", e.Ref.Type, e.Ref.ID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
