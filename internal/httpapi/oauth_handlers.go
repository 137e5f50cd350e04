package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/dkovalev/deskflow-server/internal/model"
)

// Cookie names for state that must survive the provider redirect. Both
// are scoped to the callback path so no other route ever sees them.
const (
	stateCookieName  = "oauth_state"
	intentCookieName = "link_intent"
	callbackPath     = "/v1/oauth/callback"
)

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func setCallbackCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     callbackPath,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCallbackCookie(w http.ResponseWriter, name string) {
	setCallbackCookie(w, name, "", -1)
}

// handleOAuthLogin starts the provider flow for an anonymous visitor.
// No link intent is attached, so the callback resolves as a fresh login.
func (a *API) handleOAuthLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	setCallbackCookie(w, stateCookieName, state, int(model.LinkIntentTTL.Seconds()))
	http.Redirect(w, r, a.provider.AuthCodeURL(state), http.StatusFound)
}

// handleOAuthLink starts the provider flow for a logged-in user who
// wants to attach the provider identity to their existing account. The
// signed intent rides along in a cookie scoped to the callback.
func (a *API) handleOAuthLink(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.cm.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	intent, err := a.links.BeginLink(r.Context(), principal.SubjectID)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	state, err := randomState()
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	setCallbackCookie(w, intentCookieName, intent, int(model.LinkIntentTTL.Seconds()))
	setCallbackCookie(w, stateCookieName, state, int(model.LinkIntentTTL.Seconds()))
	http.Redirect(w, r, a.provider.AuthCodeURL(state), http.StatusFound)
}

// handleOAuthCallback finishes the provider flow. With a valid intent
// cookie the provider identity is linked to the intent's user; without
// one the visitor is logged in (or signed up) from the provider profile.
func (a *API) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if provErr := r.URL.Query().Get("error"); provErr != "" {
		clearCallbackCookie(w, stateCookieName)
		clearCallbackCookie(w, intentCookieName)
		writeError(w, http.StatusBadGateway, "provider_error", "provider rejected the authorization")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "state_mismatch", "state parameter mismatch")
		return
	}
	clearCallbackCookie(w, stateCookieName)

	// The intent cookie is consumed here regardless of outcome.
	var intent string
	if c, err := r.Cookie(intentCookieName); err == nil {
		intent = c.Value
	}
	clearCallbackCookie(w, intentCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "missing authorization code")
		return
	}

	profile, err := a.provider.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("provider exchange failed", "error", err.Error())
		writeError(w, http.StatusBadGateway, "provider_error", "failed to verify provider identity")
		return
	}

	outcome, err := a.links.ResolveCallback(r.Context(), profile, intent)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	switch outcome.Kind {
	case model.LinkOutcomeLinked:
		writeJSON(w, http.StatusOK, map[string]any{"status": "linked"})
	case model.LinkOutcomeFreshLogin:
		access, refresh, err := a.auth.LoginSubject(r.Context(), outcome.SubjectID)
		if err != nil {
			a.handleServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenPairResponse{
			AccessToken:  access,
			RefreshToken: refresh,
		})
	default:
		writeError(w, http.StatusConflict, "link_failed", outcome.Reason)
	}
}
