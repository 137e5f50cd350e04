package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the durable record backing a refresh-token lineage. The
// rotation counter is monotonic; at most one refresh token is valid for a
// session at any time.
type Session struct {
	ID              uuid.UUID
	SubjectID       uuid.UUID
	RotationCounter int64
	IssuedAt        time.Time
	ExpiresAt       time.Time
	RevokedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Revoked reports whether the session has been terminated.
func (s Session) Revoked() bool {
	return s.RevokedAt != nil
}

// SessionStore persists sessions. CompareAndIncrementRotation must be
// atomic with respect to concurrent refresh calls for the same session:
// of two calls presenting the same expected counter exactly one succeeds.
type SessionStore interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	CompareAndIncrementRotation(ctx context.Context, id uuid.UUID, expected int64) (bool, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	RevokeAllBySubject(ctx context.Context, subjectID uuid.UUID) error
}
