package devserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/render"
	"github.com/goliatone/go-formsubmit/pkg/renderers/html"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// maxRecordBody caps the demo backend request body.
const maxRecordBody = 64 << 10

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/submit", s.handleDemoSubmit)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	return s.withLogging(handler)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("devserver: request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// handlePage renders the caller's form. ?format=tui selects the plain text
// rendering.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "session unavailable", err)
		return
	}

	name := r.URL.Query().Get("format")
	if name != "" && !s.orch.Registry().Has(name) {
		s.fail(w, http.StatusNotFound, "unknown format", nil)
		return
	}

	resp, err := s.orch.Render(WithSessionID(r.Context(), sess.ID), orchestrator.Request{
		Controller: sess.Controller,
		Renderer:   name,
		Options: render.RenderOptions{
			Action:      "/submit",
			ResetAction: "/reset",
			CSRF:        render.CSRF{Field: CSRFField, Token: sess.CSRF},
		},
	})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "render failed", err)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(resp.Body)
}

// handleSubmit submits the posted fields and redirects back to the page. The
// outcome is read from the controller when the page renders.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.postedSession(w, r)
	if !ok {
		return
	}

	input := validation.Input{
		FieldName: r.PostFormValue(validation.FieldName),
		Email:     r.PostFormValue(validation.FieldEmail),
		Age:       r.PostFormValue(validation.FieldAge),
	}
	err := sess.Controller.Submit(WithSessionID(r.Context(), sess.ID), input)
	switch {
	case errors.Is(err, submission.ErrSubmissionInFlight):
		s.logger.Info("devserver: submit ignored while another is pending", "session", sess.ID)
	case err != nil:
		s.logger.Debug("devserver: submit failed", "session", sess.ID, "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.postedSession(w, r)
	if !ok {
		return
	}
	sess.Controller.Reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// postedSession resolves the session of a form post and checks its CSRF
// token. It writes the error response itself and reports false on failure.
func (s *Server) postedSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, http.StatusBadRequest, "malformed form", err)
		return nil, false
	}
	sess, err := s.session(w, r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "session unavailable", err)
		return nil, false
	}
	token := r.PostFormValue(CSRFField)
	if subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRF)) != 1 {
		s.fail(w, http.StatusForbidden, "invalid csrf token", nil)
		return nil, false
	}
	return sess, true
}

// stateResponse is the body of GET /api/state.
type stateResponse struct {
	Session  string              `json:"session"`
	Snapshot submission.Snapshot `json:"snapshot"`
	View     render.View         `json:"view"`
}

// handleState reports an existing session only. Polling clients without a
// cookie get 404 instead of a fresh session each time.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok, err := s.existingSession(r)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "session unavailable", err)
		return
	}
	if !ok {
		s.fail(w, http.StatusNotFound, "no session", nil)
		return
	}
	snap := sess.Controller.Snapshot()
	s.writeJSON(w, http.StatusOK, stateResponse{
		Session:  sess.ID,
		Snapshot: snap,
		View:     render.BuildView(snap, s.orch.Form()),
	})
}

// handleDemoSubmit exposes the demo backend over HTTP so the httpsubmit
// transport can be pointed at the dev server itself.
func (s *Server) handleDemoSubmit(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRecordBody))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "unreadable body", err)
		return
	}
	var record validation.Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string][]string{
			"validationErrors": {"Malformed submission"},
		})
		return
	}

	err = s.demo.Submit(r.Context(), record)
	var rejected *submission.RejectedError
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &rejected) && len(rejected.Messages) > 0:
		s.writeJSON(w, http.StatusUnprocessableEntity, map[string][]string{
			"validationErrors": rejected.Messages,
		})
	default:
		s.fail(w, http.StatusServiceUnavailable, "demo backend failed", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "encode failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "devserver: "+msg, "status", status, "error", err)
	http.Error(w, msg, status)
}
