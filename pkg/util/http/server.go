package httputil

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server represents a wrapper over http.Server
// that provides an interface to start and stop
// listening routine.
type Server struct {
	shutdownTimeout time.Duration

	srv *http.Server
	l   net.Listener
}

// Option is a Server's constructor option.
type Option func(*cfg)

type cfg struct {
	shutdownTimeout time.Duration
}

// DefaultShutdownTimeout is the default time given to active requests
// to finish on Shutdown.
const DefaultShutdownTimeout = 30 * time.Second

const readHeaderTimeout = 10 * time.Second

func defaultCfg() *cfg {
	return &cfg{
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// WithShutdownTimeout returns an option to set the time given to active
// requests to finish on Shutdown. Non-positive values are ignored.
func WithShutdownTimeout(t time.Duration) Option {
	return func(c *cfg) {
		if t > 0 {
			c.shutdownTimeout = t
		}
	}
}

// New creates a new instance of the Server listening on TCP address addr
// once Listen is called.
func New(addr string, handler http.Handler, opts ...Option) (*Server, error) {
	switch {
	case addr == "":
		return nil, errors.New("empty server address")
	case handler == nil:
		return nil, errors.New("nil server handler")
	}

	c := defaultCfg()
	for _, o := range opts {
		o(c)
	}

	return &Server{
		shutdownTimeout: c.shutdownTimeout,
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// Listen binds the server address.
func (x *Server) Listen() error {
	l, err := net.Listen("tcp", x.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", x.srv.Addr, err)
	}

	x.l = l
	return nil
}

// Addr returns the bound address, nil before Listen.
func (x *Server) Addr() net.Addr {
	if x.l == nil {
		return nil
	}
	return x.l.Addr()
}
