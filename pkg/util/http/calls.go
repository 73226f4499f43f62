package httputil

import (
	"context"
	"errors"
	"net/http"
)

// Serve serves requests on the bound address, Listen must be called
// first.
//
// Returns any error returned by internal server
// except http.ErrServerClosed.
//
// After Shutdown call, Serve has no effect and
// returned error is always nil.
func (x *Server) Serve() error {
	if x.l == nil {
		return errors.New("server is not listening")
	}

	err := x.srv.Serve(x.l)

	// http.ErrServerClosed is returned on server shutdown
	// so we ignore this error.
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	return err
}

// Shutdown gracefully shuts down internal HTTP server.
//
// Shutdown is called with context which expires after
// configured timeout.
func (x *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), x.shutdownTimeout)
	defer cancel()

	return x.srv.Shutdown(ctx)
}
