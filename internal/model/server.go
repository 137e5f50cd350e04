package model

import (
	"context"
	"net"
)

// SecurityLayer produces listeners, plain or TLS depending on deployment.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a transport server with a uniform lifecycle, used by main to
// run the gRPC and HTTP surfaces the same way.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
