// Package httpapi is the HTTP/JSON transport of the relay. Routes, payloads
// and status codes match the SecureChat web API used by the browser client.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securechat/internal/logging"
	"github.com/dmitrijs2005/securechat/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address        string
	logger         logging.Logger
	relay          *services.Relay
	allowedOrigins map[string]struct{}
	maxBodyBytes   int64
}

func NewHTTPServer(address string, l logging.Logger, relay *services.Relay, allowedOrigins []string, maxBodyBytes int64) *HTTPServer {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &HTTPServer{
		address:        address,
		logger:         l.With("module", "http_server"),
		relay:          relay,
		allowedOrigins: origins,
		maxBodyBytes:   maxBodyBytes,
	}
}

// Handler returns the complete middleware chain around the route table.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.root)
	mux.HandleFunc("POST /register", s.register)
	mux.HandleFunc("POST /token", s.login)

	mux.HandleFunc("GET /users/me", s.authenticated(s.currentUser))
	mux.HandleFunc("GET /users/me/{$}", s.authenticated(s.currentUser))
	mux.HandleFunc("GET /users/{username}/public_key", s.publicKey)
	mux.HandleFunc("PUT /users/me/public_key", s.authenticated(s.updatePublicKey))

	mux.HandleFunc("POST /messages", s.authenticated(s.sendMessage))
	mux.HandleFunc("GET /messages", s.authenticated(s.inbox))
	mux.HandleFunc("GET /messages/{id}/attachment", s.authenticated(s.attachmentURL))
	mux.HandleFunc("POST /attachments", s.authenticated(s.newUploadSlot))

	var h http.Handler = mux
	h = s.limitBody(h)
	h = s.cors(h)
	h = s.logRequests(h)
	h = s.requestID(h)
	return h
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is cancelled, then drains
// in-flight requests. Request contexts do not inherit the cancellation of
// ctx; the drain is bounded by shutdownTimeout.
func (s *HTTPServer) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	err := srv.Serve(l)
	close(done)
	<-stopped

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
