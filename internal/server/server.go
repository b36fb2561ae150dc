// Package server owns the lifecycle of the notestream HTTP listener: the
// event stream endpoints, the notes API and the hook registration that
// feeds mutations into the stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	nshttp "github.com/Strob0t/notestream/internal/adapter/http"
	nsotel "github.com/Strob0t/notestream/internal/adapter/otel"
	"github.com/Strob0t/notestream/internal/adapter/sse"
	"github.com/Strob0t/notestream/internal/adapter/ws"
	"github.com/Strob0t/notestream/internal/config"
	"github.com/Strob0t/notestream/internal/middleware"
	"github.com/Strob0t/notestream/internal/port/database"
	"github.com/Strob0t/notestream/internal/port/hooks"
	"github.com/Strob0t/notestream/internal/service"
	"github.com/Strob0t/notestream/internal/stream"
)

var (
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("server already started")
	// ErrStoreUnavailable is returned by Start when the note store cannot be reached.
	ErrStoreUnavailable = errors.New("note store unavailable")
)

// apiTimeout bounds a single notes API request.
const apiTimeout = 30 * time.Second

// Deps are the collaborators a Server wires together.
type Deps struct {
	Hub         *stream.Hub
	Hooks       *service.Hooks
	Observer    hooks.Observer // registered on Start, usually the MutationBridge
	Store       database.Reader
	API         *nshttp.Handlers
	RateLimiter *middleware.RateLimiter // nil disables API rate limiting
}

// Server serves the event stream and the notes API on one listener.
type Server struct {
	cfg  config.Stream
	deps Deps

	mu         sync.Mutex
	started    bool
	stopped    bool
	srv        *http.Server
	ln         net.Listener
	unregister func()
	serveDone  chan struct{}
}

// New creates a Server. Nothing is bound or registered until Start.
func New(cfg config.Stream, deps Deps) *Server {
	return &Server{cfg: cfg, deps: deps}
}

// Start verifies the store, binds the listener, registers the observer and
// serves in the background. It fails with ErrAlreadyStarted when called
// twice; a failed Start leaves nothing registered or bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	if err := s.deps.Store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.ln = ln
	s.unregister = s.deps.Hooks.Register(s.deps.Observer)
	s.serveDone = make(chan struct{})
	s.started = true

	go func() {
		defer close(s.serveDone)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("stream server failed", "error", err)
		}
	}()

	slog.Info("stream server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop detaches the observer, closes every subscriber and shuts the HTTP
// server down. A stopped server cannot be started again.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return nil
	}
	s.stopped = true

	s.unregister()
	s.deps.Hub.Close()

	err := s.srv.Shutdown(ctx)
	select {
	case <-s.serveDone:
	case <-ctx.Done():
	}

	slog.Info("stream server stopped")
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Handler builds the router. Stream routes skip the request timeout and
// tracing middleware so long-lived responses are not cut off.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(nshttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(nshttp.CORS(s.cfg.CORSOrigin))

	events := sse.NewHandler(s.deps.Hub)
	r.Method(http.MethodGet, "/", events)
	r.Method(http.MethodGet, "/events", events)
	r.Method(http.MethodGet, "/ws", ws.NewHandler(s.deps.Hub, s.cfg.CORSOrigin))

	r.Group(func(r chi.Router) {
		r.Use(nshttp.SecurityHeaders)
		r.Use(nsotel.HTTPMiddleware("notestream-api"))
		r.Use(chimw.Timeout(apiTimeout))
		if s.deps.RateLimiter != nil {
			r.Use(s.deps.RateLimiter.Handler)
		}
		nshttp.MountRoutes(r, s.deps.API)
	})

	return r
}
