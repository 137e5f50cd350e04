package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager signs and verifies the three token kinds used by the
// session core. Tokens are self-contained; verification never touches
// a store.
type TokenManager interface {
	GenerateAccessToken(subjectID uuid.UUID, role Role, sessionID uuid.UUID) (string, error)
	GenerateRefreshToken(subjectID uuid.UUID, sessionID uuid.UUID, rotationCounter int64) (string, error)
	GenerateLinkIntent(subjectID uuid.UUID) (token string, jti string, err error)
	ParseAccessToken(token string) (Principal, error)
	ParseRefreshToken(token string) (RefreshClaims, error)
	ParseLinkIntent(token string) (LinkIntent, error)
}

// RefreshClaims is the verified payload of a refresh token.
type RefreshClaims struct {
	SubjectID       uuid.UUID
	SessionID       uuid.UUID
	RotationCounter int64
	ExpiresAt       time.Time
}
