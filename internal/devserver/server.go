// Package devserver serves the form page locally. Every browser gets its own
// submission controller, keyed by a session cookie.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/submission"
)

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "formsubmit_session"
	// CSRFField is the hidden input echoing the session token.
	CSRFField = render.DefaultCSRFField
)

// Config holds listener and session settings. SessionTTL and MaxSessions
// bound the default in-memory store; zero leaves that limit off.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SessionTTL   time.Duration
	MaxSessions  int
}

// Session is the per-browser state.
type Session struct {
	ID         string
	CSRF       string
	Controller *submission.Controller
	Created    time.Time
}

// Middleware wraps the server's handler.
type Middleware func(http.Handler) http.Handler

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and controllers.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSubmitFunc replaces the in-process demo backend.
func WithSubmitFunc(fn submission.SubmitFunc) Option {
	return func(s *Server) {
		if fn != nil {
			s.submit = fn
		}
	}
}

// WithOrchestrator supplies the form, schema and renderers. The default
// links the html renderer to the embedded stylesheet.
func WithOrchestrator(o *orchestrator.Orchestrator) Option {
	return func(s *Server) {
		if o != nil {
			s.orch = o
		}
	}
}

// WithStore replaces the in-memory session store.
func WithStore(store Store[*Session]) Option {
	return func(s *Server) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithMiddleware wraps the handler. Middlewares run in the order given,
// outermost first. Without any the handler is served as is.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Server) {
		for _, m := range mw {
			if m != nil {
				s.middleware = append(s.middleware, m)
			}
		}
	}
}

// WithDemoDelay slows the in-process demo backend down.
func WithDemoDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.demo.Delay = delay
	}
}

// Server is the development HTTP surface.
type Server struct {
	cfg        Config
	logger     *slog.Logger
	submit     submission.SubmitFunc
	orch       *orchestrator.Orchestrator
	sessions   Store[*Session]
	middleware []Middleware
	demo       DemoBackend

	// sessionMu serialises get-or-create so one cookie maps to one session.
	sessionMu sync.Mutex
	handler   http.Handler
}

// New builds a Server.
func New(cfg Config, options ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = NewMemoryStore[*Session](WithTTL(cfg.SessionTTL), WithCapacity(cfg.MaxSessions))
	}
	s.demo.Logger = s.logger
	if s.submit == nil {
		s.submit = s.demo.Submit
	}
	if s.orch == nil {
		s.orch = orchestrator.New(
			orchestrator.WithLogger(s.logger),
			orchestrator.WithStylesheetURL("/assets/"+html.StylesheetName),
		)
	}
	if err := s.orch.Err(); err != nil {
		return nil, fmt.Errorf("devserver: %w", err)
	}
	if !s.orch.Registry().Has(html.Name) {
		return nil, fmt.Errorf("devserver: renderer %q is required", html.Name)
	}

	s.handler = s.routes()
	return s, nil
}

// Handler returns the routed handler wrapped by the configured middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver: listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("devserver: shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("devserver: shutdown: %w", err)
		}
		return nil
	}
}

// session returns the caller's session, creating one (and setting the
// cookie) when the request carries none or an unknown id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, error) {
	ctx := r.Context()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		sess, ok, err := s.sessions.Get(ctx, cookie.Value)
		if err != nil {
			return nil, err
		}
		if ok {
			return sess, nil
		}
	}

	id := uuid.NewString()
	sess := &Session{
		ID:      id,
		CSRF:    uuid.NewString(),
		Created: time.Now(),
		Controller: s.orch.NewController(s.submit,
			submission.WithLogger(s.logger.With("session", id)),
		),
	}
	if err := s.sessions.Set(ctx, id, sess); err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	count, _ := s.sessions.Len(ctx)
	s.logger.Debug("devserver: session created", "session", id, "sessions", count)
	return sess, nil
}

// existingSession returns the caller's session without creating one.
func (s *Server) existingSession(r *http.Request) (*Session, bool, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, false, nil
	}
	return s.sessions.Get(r.Context(), cookie.Value)
}
