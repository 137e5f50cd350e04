package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
}

// User represents a stored account with its authentication material.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Identity links a user to an external OAuth provider account.
// (Provider, ProviderUserID) is unique across the system.
type Identity struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Provider       string
	ProviderUserID string
	Email          string
	CreatedAt      time.Time
}

// IdentityStore persists provider links.
type IdentityStore interface {
	Create(ctx context.Context, identity Identity) (Identity, error)
	GetByProvider(ctx context.Context, provider, providerUserID string) (Identity, error)
}
