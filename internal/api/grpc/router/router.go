package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dkovalev/deskflow-server/internal/api/grpc/middleware"
	"github.com/dkovalev/deskflow-server/internal/logger"
	"github.com/dkovalev/deskflow-server/internal/model"
)

// Router wires the gRPC surface: health checking, reflection and the
// authentication interceptor chain that protects every other service.
type Router struct {
	verifier       middleware.TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
	health         *health.Server
}

// New creates a new gRPC Router instance.
func New(
	verifier middleware.TokenVerifier,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		verifier:       verifier,
		contextManager: contextManager,
		logger:         logger,
		health:         health.NewServer(),
	}
}

// Health and reflection are probe surfaces and stay open.
func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	return strings.HasPrefix(c.FullMethod(), "/grpc.health.v1.Health/") ||
		strings.HasPrefix(c.FullMethod(), "/grpc.reflection.")
}

// Register builds the gRPC server with logging and authentication
// interceptors and registers the built-in services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.verifier, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(func(ctx context.Context, c interceptors.CallMeta) bool {
					return !authSkip(ctx, c)
				}),
			),
		),
		grpc.ChainStreamInterceptor(
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(func(ctx context.Context, c interceptors.CallMeta) bool {
					return !authSkip(ctx, c)
				}),
			),
		),
	)

	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}

// SetServing flips the overall health status once dependencies are up.
func (r *Router) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	r.health.SetServingStatus("", status)
}
