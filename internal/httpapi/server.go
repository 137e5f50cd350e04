package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dkovalev/deskflow-server/internal/model"
)

var _ model.Server = (*HTTPServer)(nil)

// HTTPServer wraps an http.Server with address and lifecycle methods,
// mirroring the gRPC server wrapper so main can run both uniformly.
type HTTPServer struct {
	server *http.Server
	addr   string
}

// NewHTTPServer creates an HTTPServer serving the given handler.
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		addr: addr,
	}
}

// Start starts serving on the configured address using the provided security layer.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
