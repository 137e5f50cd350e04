// Package oauth wraps the external identity provider behind a small
// client the link flow can use without knowing provider specifics.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dkovalev/deskflow-server/internal/config"
	"github.com/dkovalev/deskflow-server/internal/model"
)

// Provider implements the authorization-code flow against one
// configured OAuth2 identity provider.
type Provider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// NewProvider creates a Provider from configuration. redirectURL is the
// absolute callback URL of this server.
func NewProvider(cfg config.OAuth, redirectURL string) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("oauth client credentials are required")
	}
	if cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.UserInfoURL == "" {
		return nil, fmt.Errorf("oauth endpoint URLs are required")
	}

	return &Provider{
		name: cfg.Provider,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: redirectURL,
			Scopes:      cfg.Scopes,
		},
		userInfoURL: cfg.UserInfoURL,
	}, nil
}

// Name returns the configured provider name, recorded on linked identities.
func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the provider authorization URL for the given state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// userInfo is the subset of the provider's userinfo response we map.
type userInfo struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Exchange trades the authorization code for a token and fetches the
// provider profile of the authenticated user.
func (p *Provider) Exchange(ctx context.Context, code string) (model.ProviderProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return model.ProviderProfile{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return model.ProviderProfile{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.ProviderProfile{}, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return model.ProviderProfile{}, fmt.Errorf("failed to decode user info: %w", err)
	}

	// OIDC providers use "sub", plain OAuth2 providers often "id".
	providerUserID := info.Sub
	if providerUserID == "" {
		providerUserID = info.ID
	}
	if providerUserID == "" {
		return model.ProviderProfile{}, fmt.Errorf("missing user ID in provider response")
	}

	return model.ProviderProfile{
		Provider: p.name,
		UserID:   providerUserID,
		Email:    info.Email,
	}, nil
}
