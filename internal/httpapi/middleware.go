package httpapi

import (
	"net/http"
	"strings"

	"github.com/dkovalev/deskflow-server/internal/pipeline"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// protect runs the authorization pipeline for the given procedure before
// the handler. The verified principal is placed in the request context.
func (a *API) protect(proc pipeline.Procedure, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get(authHeader), bearer)

		principal, err := a.pipe.Run(r.Context(), token, proc, r)
		if err != nil {
			a.handleServiceError(w, r, err)
			return
		}

		ctx := a.cm.SetPrincipal(r.Context(), principal)
		next(w, r.WithContext(ctx))
	}
}
