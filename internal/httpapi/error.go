package httpapi

import (
	"errors"
	"net/http"

	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/service"
)

// handleServiceError maps the authorization taxonomy and service errors
// onto stable HTTP codes. Unknown errors become an opaque 500; internal
// details never reach the client.
func (a *API) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var evalErr *model.EvaluationError

	switch {
	case errors.Is(err, model.ErrUnauthenticated),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrTokenMalformed):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
	case errors.Is(err, model.ErrSessionRevoked):
		writeError(w, http.StatusUnauthorized, "session_revoked", "session revoked")
	case errors.Is(err, model.ErrTokenReuse):
		writeError(w, http.StatusUnauthorized, "token_reuse", "refresh token reuse detected")
	case errors.Is(err, model.ErrMissingRole):
		writeError(w, http.StatusForbidden, "missing_role", "missing required role")
	case errors.Is(err, model.ErrInsufficientAccess):
		writeError(w, http.StatusForbidden, "insufficient_access", "insufficient access level")
	case errors.Is(err, model.ErrLinkIntentInvalid):
		writeError(w, http.StatusConflict, "link_intent_invalid", "link intent invalid")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.As(err, &evalErr):
		a.logger.Error("access evaluation failed",
			"path", r.URL.Path,
			"resource_type", evalErr.Ref.Type,
			"error", evalErr.Err.Error())
		writeError(w, http.StatusInternalServerError, "evaluation_failed", "access could not be determined")
	default:
		a.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
