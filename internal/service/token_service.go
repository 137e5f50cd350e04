package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/obs"
)

// TokenService provides high-level operations for issuing, verifying,
// refreshing and revoking session tokens. It composes the TokenManager
// and SessionStore.
type TokenService struct {
	manager  model.TokenManager
	sessions model.SessionStore
	users    model.UserStore
	logger   *logger.Logger
}

func NewTokenService(manager model.TokenManager, sessions model.SessionStore, users model.UserStore, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, sessions: sessions, users: users, logger: logger}
}

// NOTE: Keep this in sync with the token manager's refresh TTL. The
// session row outlives every refresh token minted for it; cryptographic
// validity is still checked against the JWT claims at parse time.
const sessionTTL = 30 * 24 * time.Hour

// Issue creates a new session at rotation counter zero and returns a
// signed access/refresh pair bound to it.
func (s *TokenService) Issue(ctx context.Context, subjectID uuid.UUID, role model.Role) (accessToken string, refreshToken string, err error) {
	now := time.Now()
	session := model.Session{
		ID:              uuid.New(),
		SubjectID:       subjectID,
		RotationCounter: 0,
		IssuedAt:        now,
		ExpiresAt:       now.Add(sessionTTL),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", "", fmt.Errorf("persist session: %w", err)
	}

	access, err := s.manager.GenerateAccessToken(subjectID, role, session.ID)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(subjectID, session.ID, session.RotationCounter)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	return access, refresh, nil
}

// VerifyAccess validates a self-contained access token and returns the
// request Principal. No session-store round-trip happens here: a revoked
// session stays usable for access-token holders until the token's own
// short expiry elapses. That staleness window is accepted deliberately.
func (s *TokenService) VerifyAccess(token string) (model.Principal, error) {
	return s.manager.ParseAccessToken(token)
}

// Refresh rotates a session: the presented token's counter must match the
// session's current counter, atomically. A mismatch means the token was
// already spent; the whole session is revoked as a reuse defense before
// the error is returned.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (newAccess string, newRefresh string, err error) {
	claims, err := s.manager.ParseRefreshToken(presentedRefresh)
	if err != nil {
		return "", "", err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", "", model.ErrSessionRevoked
		}
		return "", "", fmt.Errorf("load session: %w", err)
	}

	if session.Revoked() {
		return "", "", model.ErrSessionRevoked
	}
	if time.Now().After(session.ExpiresAt) {
		return "", "", model.ErrTokenExpired
	}

	ok, err := s.sessions.CompareAndIncrementRotation(ctx, session.ID, claims.RotationCounter)
	if err != nil {
		return "", "", fmt.Errorf("rotate session: %w", err)
	}
	if !ok {
		obs.IncTokenReuse()
		s.logger.Error("refresh token reuse detected, revoking session",
			"subject_id", claims.SubjectID)
		if revokeErr := s.sessions.Revoke(ctx, session.ID); revokeErr != nil {
			s.logger.Error("failed to revoke session after reuse",
				"error", revokeErr.Error())
		}
		return "", "", model.ErrTokenReuse
	}

	// Refresh tokens carry no role. Re-read it so role changes take
	// effect at the next rotation instead of riding the old session out.
	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		return "", "", fmt.Errorf("load subject: %w", err)
	}

	access, err := s.manager.GenerateAccessToken(claims.SubjectID, user.Role, session.ID)
	if err != nil {
		return "", "", fmt.Errorf("issue new access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(claims.SubjectID, session.ID, claims.RotationCounter+1)
	if err != nil {
		return "", "", fmt.Errorf("issue new refresh: %w", err)
	}

	return access, refresh, nil
}

// Revoke marks the session terminal. Already-issued access tokens ride
// out their own expiry.
func (s *TokenService) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// RevokeAllForSubject terminates every session of one subject.
func (s *TokenService) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) error {
	return s.sessions.RevokeAllBySubject(ctx, subjectID)
}
