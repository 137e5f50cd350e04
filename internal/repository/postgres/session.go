package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) error {
	const query = `
        INSERT INTO sessions (
            id, subject_id, rotation_counter, issued_at, expires_at, revoked_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
    `

	_, err := r.db.Exec(ctx, query,
		session.ID, session.SubjectID, session.RotationCounter,
		session.IssuedAt, session.ExpiresAt, session.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Session, error) {
	const query = `
        SELECT id, subject_id, rotation_counter, issued_at, expires_at, revoked_at, created_at, updated_at
        FROM sessions WHERE id = $1
    `
	var s model.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.SubjectID, &s.RotationCounter, &s.IssuedAt, &s.ExpiresAt,
		&s.RevokedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("failed to get session by id: %w", err)
	}
	return s, nil
}

// CompareAndIncrementRotation advances the rotation counter only if it
// still equals the expected value and the session is alive. The single
// guarded UPDATE is the serialization point for concurrent refreshes:
// postgres row locking guarantees at most one of two racing calls
// matches the WHERE clause.
func (r *SessionRepository) CompareAndIncrementRotation(ctx context.Context, id uuid.UUID, expected int64) (bool, error) {
	const query = `
        UPDATE sessions
        SET rotation_counter = rotation_counter + 1, updated_at = NOW()
        WHERE id = $1 AND rotation_counter = $2 AND revoked_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to increment rotation counter: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	const query = `
        UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (r *SessionRepository) RevokeAllBySubject(ctx context.Context, subjectID uuid.UUID) error {
	const query = `
        UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
        WHERE subject_id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, subjectID); err != nil {
		return fmt.Errorf("failed to revoke sessions by subject: %w", err)
	}
	return nil
}
