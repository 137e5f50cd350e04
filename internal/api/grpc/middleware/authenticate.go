package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
)

// TokenVerifier establishes caller identity from a bearer token.
type TokenVerifier interface {
	VerifyAccess(token string) (model.Principal, error)
}

// Authenticate validates bearer tokens and injects the verified
// principal into context.
type Authenticate struct {
	verifier       TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(verifier TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{verifier: verifier, contextManager: contextManager, logger: logger}
}

// AuthFunc parses the Authorization header, verifies the access token
// and returns a context carrying the principal. Failures surface as
// codes.Unauthenticated without token internals.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	var tokenString string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if authHeaders := md.Get("authorization"); len(authHeaders) > 0 {
			tokenString = strings.TrimPrefix(authHeaders[0], "Bearer ")
		}
	}

	if tokenString == "" {
		return nil, status.Error(codes.Unauthenticated, "missing authorization token")
	}

	principal, err := m.verifier.VerifyAccess(tokenString)
	if err != nil {
		m.logger.Debug("token verification failed", "error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid authorization token")
	}

	return m.contextManager.SetPrincipal(ctx, principal), nil
}
