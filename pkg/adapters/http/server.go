// Package http exposes the session controller over a JSON API.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/runner"
	"github.com/dewakar-s/procflow/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var rawSpec []byte

// Sessions is the controller surface the API drives.
type Sessions interface {
	Start(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error)
	Resume(ctx context.Context, sessionID string, req session.ResumeRequest) (domain.Outcome, error)
	Get(ctx context.Context, sessionID string) (*domain.State, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// Catalog lists the registered actions.
type Catalog interface {
	List() []*action.Invoker
}

// Server holds the handlers' dependencies.
type Server struct {
	Sessions Sessions
	Catalog  Catalog
	Streams  *StreamManager
	Metrics  http.Handler
	Version  string
	Logger   *slog.Logger

	spec *openapi3.T
}

// Option configures the Server.
type Option func(*Server)

// WithCatalog enables GET /actions.
func WithCatalog(c Catalog) Option {
	return func(s *Server) { s.Catalog = c }
}

// WithStreams shares a StreamManager, typically also registered as a controller
// outcome listener.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.Metrics = h }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.Version = v }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.Logger = l }
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// NewHandler builds the router.
func NewHandler(sessions Sessions, opts ...Option) (http.Handler, error) {
	s := &Server{
		Sessions: sessions,
		Version:  "dev",
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}

	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.spec = spec

	validate, err := requestValidator(spec, s.Logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(rawSpec)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)
		r.Get("/actions", s.ListActions)
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.ListSessions)
			r.Post("/", s.StartSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSession)
				r.Delete("/", s.DeleteSession)
				r.Post("/resume", s.ResumeSession)
				r.Get("/events", s.SubscribeEvents)
			})
		})
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	SessionID string        `json:"session_id,omitempty"`
	Steps     []domain.Step `json:"steps"`
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("StartSession: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.Sessions.Start(r.Context(), body.SessionID, domain.Procedure{ID: body.SessionID, Steps: body.Steps})
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ResumeSession handles POST /sessions/{id}/resume.
// The Idempotency-Key header is used as the resume token when the body has none.
func (s *Server) ResumeSession(w http.ResponseWriter, r *http.Request) {
	var body session.ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("ResumeSession: invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Token == "" {
		body.Token = r.Header.Get("Idempotency-Key")
	}

	clean, err := runner.SanitizeInput(body.Answer)
	if err != nil {
		s.Logger.Warn("ResumeSession: input rejected", "error", err, "size", len(body.Answer))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid input: %v", err))
		return
	}
	body.Answer = clean

	out, err := s.Sessions.Resume(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		s.fail(w, "ResumeSession", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

type actionInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method"`
	URL         string `json:"url"`
	Parameters  any    `json:"parameters"`
}

// ListActions handles GET /actions.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	out := []actionInfo{}
	if s.Catalog != nil {
		for _, inv := range s.Catalog.List() {
			out = append(out, actionInfo{
				Name:        inv.Name(),
				Description: inv.Description(),
				Method:      inv.Method(),
				URL:         inv.Descriptor().URL,
				Parameters:  inv.Schema(),
			})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, _ *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "procflow-http",
		"version":     strings.TrimSpace(s.Version),
		"api_version": apiVersion,
	})
}

// StatusFor maps controller errors onto HTTP status codes.
func StatusFor(err error) int {
	var cfg *domain.ConfigurationError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionNotSuspended), errors.Is(err, domain.ErrSessionExists):
		return http.StatusConflict
	case errors.As(err, &cfg):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Debug(op+" rejected", "error", err, "status", code)
	}
	writeError(w, code, err.Error())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
