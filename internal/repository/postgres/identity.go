package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

type IdentityRepository struct {
	db *Connection
}

func NewIdentityRepository(db *Connection) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	const query = `
        INSERT INTO identities (id, user_id, provider, provider_user_id, email, created_at)
        VALUES ($1,$2,$3,$4,$5,NOW())
        RETURNING id, user_id, provider, provider_user_id, email, created_at
    `
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}

	var created model.Identity
	err := r.db.QueryRow(ctx, query,
		identity.ID, identity.UserID, identity.Provider, identity.ProviderUserID, identity.Email,
	).Scan(&created.ID, &created.UserID, &created.Provider, &created.ProviderUserID, &created.Email, &created.CreatedAt)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}
	return created, nil
}

func (r *IdentityRepository) GetByProvider(ctx context.Context, provider, providerUserID string) (model.Identity, error) {
	const query = `
        SELECT id, user_id, provider, provider_user_id, email, created_at
        FROM identities WHERE provider = $1 AND provider_user_id = $2
    `
	var i model.Identity
	err := r.db.QueryRow(ctx, query, provider, providerUserID).
		Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderUserID, &i.Email, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by provider: %w", err)
	}
	return i, nil
}
