package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
)

// ErrInvalidCredentials is returned for unknown emails and wrong
// passwords alike, so login failures do not reveal which it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when signing up with an already used email.
var ErrEmailTaken = errors.New("email already registered")

// Auth handles signup, login and logout. Token issuance is delegated to
// the TokenService.
type Auth struct {
	users        model.UserStore
	tokenService *TokenService
	logger       *logger.Logger
}

func NewAuth(users model.UserStore, tokenService *TokenService, logger *logger.Logger) *Auth {
	return &Auth{users: users, tokenService: tokenService, logger: logger}
}

// Signup registers a new client account.
func (a *Auth) Signup(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, fmt.Errorf("valid email is required")
	}
	if len(password) < 8 {
		return model.User{}, fmt.Errorf("password must be at least 8 characters")
	}

	existing, err := a.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("signup rejected, email already registered", "email", email)
		return model.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleClient,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a token pair for a new session.
func (a *Auth) Login(ctx context.Context, email, password string) (accessToken string, refreshToken string, err error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("login rejected, password mismatch", "email", email)
		return "", "", ErrInvalidCredentials
	}

	return a.tokenService.Issue(ctx, user.ID, user.Role)
}

// LoginSubject issues a token pair for an already verified subject.
// The OAuth callback uses it after the provider has vouched for the user.
func (a *Auth) LoginSubject(ctx context.Context, subjectID uuid.UUID) (accessToken string, refreshToken string, err error) {
	user, err := a.users.GetByID(ctx, subjectID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}
	return a.tokenService.Issue(ctx, user.ID, user.Role)
}

// Logout terminates the caller's session.
func (a *Auth) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return a.tokenService.Revoke(ctx, sessionID)
}
