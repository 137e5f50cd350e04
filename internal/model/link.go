package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LinkIntentTTL bounds how long an account-link redirect may take.
const LinkIntentTTL = 10 * time.Minute

// LinkIntent is the verified payload of a single-use signed intent that
// survives the external OAuth redirect. JTI makes consumption trackable.
type LinkIntent struct {
	JTI          string
	ReturnUserID uuid.UUID
	ExpiresAt    time.Time
}

// IntentConsumer records intent consumption. Consume is first-writer-wins:
// it returns true exactly once per JTI within the intent's lifetime.
type IntentConsumer interface {
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

// ProviderProfile is the subset of an OAuth provider's userinfo response
// the link flow needs.
type ProviderProfile struct {
	Provider string
	UserID   string
	Email    string
}

// LinkOutcomeKind discriminates the result of an OAuth callback.
type LinkOutcomeKind int

const (
	LinkOutcomeFreshLogin LinkOutcomeKind = iota
	LinkOutcomeLinked
	LinkOutcomeFailed
)

// LinkOutcome is the resolution of one OAuth callback.
type LinkOutcome struct {
	Kind      LinkOutcomeKind
	SubjectID uuid.UUID
	Reason    string
}
