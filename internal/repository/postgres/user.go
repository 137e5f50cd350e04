package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	const query = `
        SELECT id, email, password_hash, role, created_at, updated_at, deleted_at
        FROM users WHERE email = $1 AND deleted_at IS NULL
    `
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	const query = `
        SELECT id, email, password_hash, role, created_at, updated_at, deleted_at
        FROM users WHERE id = $1 AND deleted_at IS NULL
    `
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	const query = `
        INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
        VALUES ($1,$2,$3,$4,NOW(),NOW())
        RETURNING id, email, password_hash, role, created_at, updated_at, deleted_at
    `
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return r.scanOne(r.db.QueryRow(ctx, query, user.ID, user.Email, user.PasswordHash, string(user.Role)))
}

func (r *UserRepository) scanOne(row pgx.Row) (model.User, error) {
	var u model.User
	var roleStr string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &roleStr, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}

	role, err := model.ParseRole(roleStr)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to parse stored role: %w", err)
	}
	u.Role = role

	return u, nil
}
