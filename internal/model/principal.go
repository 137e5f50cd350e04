package model

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the verified identity attached to one in-flight call.
// It is produced by access-token verification and never persisted.
type Principal struct {
	SubjectID uuid.UUID
	Role      Role
	SessionID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}
