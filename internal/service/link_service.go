package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
)

// LinkService drives the OAuth account-link handshake: a signed intent is
// issued before the redirect, and the callback resolves to either a link
// of the returning provider profile or a plain login/signup.
type LinkService struct {
	manager    model.TokenManager
	intents    model.IntentConsumer
	users      model.UserStore
	identities model.IdentityStore
	logger     *logger.Logger
}

func NewLinkService(
	manager model.TokenManager,
	intents model.IntentConsumer,
	users model.UserStore,
	identities model.IdentityStore,
	logger *logger.Logger,
) *LinkService {
	return &LinkService{
		manager:    manager,
		intents:    intents,
		users:      users,
		identities: identities,
		logger:     logger,
	}
}

// BeginLink issues the signed single-use intent for the given subject.
// The caller places it in the redirect-surviving cookie.
func (s *LinkService) BeginLink(ctx context.Context, subjectID uuid.UUID) (string, error) {
	if _, err := s.users.GetByID(ctx, subjectID); err != nil {
		return "", fmt.Errorf("load subject: %w", err)
	}

	intent, _, err := s.manager.GenerateLinkIntent(subjectID)
	if err != nil {
		return "", fmt.Errorf("sign link intent: %w", err)
	}

	return intent, nil
}

// ResolveCallback decides what one OAuth callback means. An absent,
// expired or unparseable intent downgrades the flow to a fresh login;
// that fallback is deliberate, not an error. A parseable intent is
// consumed exactly once; re-presentation fails closed.
func (s *LinkService) ResolveCallback(ctx context.Context, profile model.ProviderProfile, presentedIntent string) (model.LinkOutcome, error) {
	if presentedIntent == "" {
		return s.freshLogin(ctx, profile)
	}

	intent, err := s.manager.ParseLinkIntent(presentedIntent)
	if err != nil {
		s.logger.Info("link intent not usable, falling back to fresh login",
			"provider", profile.Provider,
			"reason", err.Error())
		return s.freshLogin(ctx, profile)
	}

	ttl := time.Until(intent.ExpiresAt)
	if ttl <= 0 {
		return s.freshLogin(ctx, profile)
	}

	consumed, err := s.intents.Consume(ctx, intent.JTI, ttl)
	if err != nil {
		return model.LinkOutcome{}, fmt.Errorf("consume link intent: %w", err)
	}
	if !consumed {
		return model.LinkOutcome{
			Kind:   model.LinkOutcomeFailed,
			Reason: "intent already consumed",
		}, model.ErrLinkIntentInvalid
	}

	return s.link(ctx, profile, intent.ReturnUserID)
}

func (s *LinkService) link(ctx context.Context, profile model.ProviderProfile, returnUserID uuid.UUID) (model.LinkOutcome, error) {
	existing, err := s.identities.GetByProvider(ctx, profile.Provider, profile.UserID)
	switch {
	case err == nil:
		if existing.UserID == returnUserID {
			// Relinking the same pair is harmless.
			return model.LinkOutcome{Kind: model.LinkOutcomeLinked, SubjectID: returnUserID}, nil
		}
		return model.LinkOutcome{
			Kind:   model.LinkOutcomeFailed,
			Reason: "provider account already linked elsewhere",
		}, nil
	case errors.Is(err, model.ErrNotFound):
	default:
		return model.LinkOutcome{}, fmt.Errorf("lookup identity: %w", err)
	}

	if _, err := s.identities.Create(ctx, model.Identity{
		ID:             uuid.New(),
		UserID:         returnUserID,
		Provider:       profile.Provider,
		ProviderUserID: profile.UserID,
		Email:          profile.Email,
	}); err != nil {
		return model.LinkOutcome{}, fmt.Errorf("create identity: %w", err)
	}

	return model.LinkOutcome{Kind: model.LinkOutcomeLinked, SubjectID: returnUserID}, nil
}

func (s *LinkService) freshLogin(ctx context.Context, profile model.ProviderProfile) (model.LinkOutcome, error) {
	identity, err := s.identities.GetByProvider(ctx, profile.Provider, profile.UserID)
	if err == nil {
		return model.LinkOutcome{Kind: model.LinkOutcomeFreshLogin, SubjectID: identity.UserID}, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.LinkOutcome{}, fmt.Errorf("lookup identity: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		ID:    uuid.New(),
		Email: profile.Email,
		Role:  model.RoleClient,
	})
	if err != nil {
		return model.LinkOutcome{}, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.identities.Create(ctx, model.Identity{
		ID:             uuid.New(),
		UserID:         user.ID,
		Provider:       profile.Provider,
		ProviderUserID: profile.UserID,
		Email:          profile.Email,
	}); err != nil {
		return model.LinkOutcome{}, fmt.Errorf("create identity: %w", err)
	}

	return model.LinkOutcome{Kind: model.LinkOutcomeFreshLogin, SubjectID: user.ID}, nil
}
