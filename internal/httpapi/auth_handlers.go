package httpapi

import (
	"net/http"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := a.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  string(user.Role),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	access, refresh, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "refresh_token is required")
		return
	}

	access, refresh, err := a.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.cm.GetPrincipal(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	if err := a.auth.Logout(r.Context(), principal.SessionID); err != nil {
		a.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}
