// Package httpapi is the HTTP surface of the server: authentication,
// OAuth account linking and service-request management. Every protected
// route is guarded by the authorization pipeline before its handler runs.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
	"github.com/dkovalev/deskflow-server/internal/oauth"
	"github.com/dkovalev/deskflow-server/internal/obs"
	"github.com/dkovalev/deskflow-server/internal/pipeline"
	"github.com/dkovalev/deskflow-server/internal/service"
)

// ReadyProbe checks dependency readiness, typically a database ping.
type ReadyProbe interface {
	Ping(ctx context.Context) error
}

// API is the HTTP layer. It owns the route table and the pipeline
// procedures guarding each route.
type API struct {
	mux      *http.ServeMux
	auth     *service.Auth
	tokens   *service.TokenService
	requests *service.Request
	links    *service.LinkService
	provider *oauth.Provider
	pipe     *pipeline.Pipeline
	cm       *ContextManager
	probe    ReadyProbe
	logger   *logger.Logger
}

// New creates the API and registers all routes.
func New(
	auth *service.Auth,
	tokens *service.TokenService,
	requests *service.Request,
	links *service.LinkService,
	provider *oauth.Provider,
	pipe *pipeline.Pipeline,
	probe ReadyProbe,
	logger *logger.Logger,
) *API {
	a := &API{
		mux:      http.NewServeMux(),
		auth:     auth,
		tokens:   tokens,
		requests: requests,
		links:    links,
		provider: provider,
		pipe:     pipe,
		cm:       NewContextManager(),
		probe:    probe,
		logger:   logger,
	}
	a.registerRoutes()
	return a
}

func pathID(input any) (string, error) {
	r, ok := input.(*http.Request)
	if !ok {
		return "", errors.New("input is not an http request")
	}
	return r.PathValue("id"), nil
}

func (a *API) registerRoutes() {
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReady)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/auth/signup", a.handleSignup)
	a.mux.HandleFunc("POST /v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("POST /v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("POST /v1/auth/logout", a.protect(pipeline.Procedure{
		Name: "auth.logout",
	}, a.handleLogout))

	a.mux.HandleFunc("GET /v1/oauth/login", a.handleOAuthLogin)
	a.mux.HandleFunc("GET /v1/oauth/link", a.protect(pipeline.Procedure{
		Name: "oauth.link",
	}, a.handleOAuthLink))
	a.mux.HandleFunc("GET /v1/oauth/callback", a.handleOAuthCallback)

	a.mux.HandleFunc("POST /v1/requests", a.protect(pipeline.Procedure{
		Name: "requests.create",
	}, a.handleRequestCreate))
	a.mux.HandleFunc("GET /v1/requests", a.protect(pipeline.Procedure{
		Name: "requests.list",
	}, a.handleRequestList))
	a.mux.HandleFunc("GET /v1/requests/{id}", a.protect(pipeline.Procedure{
		Name: "requests.get",
		Resource: &pipeline.ResourceAccess{
			Type:          model.ResourceTypeRequest,
			RequiredLevel: model.AccessOwn,
			ExtractID:     pathID,
		},
	}, a.handleRequestGet))
	a.mux.HandleFunc("POST /v1/requests/{id}/assign", a.protect(pipeline.Procedure{
		Name:          "requests.assign",
		RequiredRoles: []model.Role{model.RoleEmployee},
		Resource: &pipeline.ResourceAccess{
			Type:          model.ResourceTypeRequest,
			RequiredLevel: model.AccessAssigned,
			ExtractID:     pathID,
		},
	}, a.handleRequestAssign))
	a.mux.HandleFunc("POST /v1/requests/{id}/status", a.protect(pipeline.Procedure{
		Name: "requests.status",
		Resource: &pipeline.ResourceAccess{
			Type:          model.ResourceTypeRequest,
			RequiredLevel: model.AccessAssigned,
			ExtractID:     pathID,
		},
	}, a.handleRequestStatus))
	a.mux.HandleFunc("POST /v1/requests/{id}/attachments", a.protect(pipeline.Procedure{
		Name: "attachments.create",
		Resource: &pipeline.ResourceAccess{
			Type:          model.ResourceTypeRequest,
			RequiredLevel: model.AccessOwn,
			ExtractID:     pathID,
		},
	}, a.handleAttachmentUpload))
	a.mux.HandleFunc("GET /v1/requests/{id}/attachments", a.protect(pipeline.Procedure{
		Name: "attachments.list",
		Resource: &pipeline.ResourceAccess{
			Type:          model.ResourceTypeRequest,
			RequiredLevel: model.AccessOwn,
			ExtractID:     pathID,
		},
	}, a.handleAttachmentList))
	a.mux.HandleFunc("GET /v1/requests/{id}/attachments/{attachmentID}", a.protect(pipeline.Procedure{
		Name: "attachments.download",
		Resource: &pipeline.ResourceAccess{
			Type:          model.ResourceTypeRequest,
			RequiredLevel: model.AccessOwn,
			ExtractID:     pathID,
		},
	}, a.handleAttachmentDownload))
}

// Handler returns the instrumented root handler.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.mux)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "deskflow-server",
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.probe != nil {
		if err := a.probe.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
