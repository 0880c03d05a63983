// Package api exposes the engine, catalog and chat assistant over HTTP.
// Authentication, quotas and billing live in front of this service; owner
// ids arrive as request parameters.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/tsadoc/docuchat/internal/analysis"
	"github.com/tsadoc/docuchat/internal/catalog"
	"github.com/tsadoc/docuchat/internal/chat"
	"github.com/tsadoc/docuchat/internal/common"
	"github.com/tsadoc/docuchat/internal/llm"
)

type Server struct {
	router    chi.Router
	store     *catalog.Store
	provider  llm.Provider
	engine    *analysis.Engine
	assistant *chat.Assistant
	sessions  *sessionRegistry
}

func NewServer(store *catalog.Store, provider llm.Provider, engine *analysis.Engine) (*Server, error) {
	logger := common.Logger()
	if store == nil {
		return nil, errors.New("catalog store required")
	}
	if provider == nil {
		return nil, errors.New("llm provider required")
	}
	if engine == nil {
		engine = analysis.NewEngine(store, store, provider)
	}
	srv := &Server{
		router:    chi.NewRouter(),
		store:     store,
		provider:  provider,
		engine:    engine,
		assistant: chat.NewAssistant(provider, store),
		sessions:  newSessionRegistry(),
	}
	srv.routes()
	logger.Info("api: server ready", "provider", provider.Name())
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/v1/logs", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"entries": common.LogEntries()})
	})

	s.router.Post("/v1/matrices", s.handleCreateMatrix)
	s.router.Get("/v1/matrices", s.handleListMatrices)
	s.router.Get("/v1/matrices/{matrixID}", s.handleGetMatrix)
	s.router.Put("/v1/matrices/{matrixID}/questions", s.handleUpdateMatrixQuestions)
	s.router.Delete("/v1/matrices/{matrixID}", s.handleDeleteMatrix)

	s.router.Post("/v1/documents", s.handleCreateDocument)
	s.router.Get("/v1/documents", s.handleListDocuments)
	s.router.Get("/v1/documents/{documentID}", s.handleGetDocument)
	s.router.Delete("/v1/documents/{documentID}", s.handleDeleteDocument)

	s.router.Post("/v1/analysis/sessions", s.handleStartSession)
	s.router.Get("/v1/analysis/sessions/{sessionID}", s.handleGetSession)
	s.router.Post("/v1/analysis/sessions/{sessionID}/regenerate", s.handleRegenerate)
	s.router.Post("/v1/analysis/sessions/{sessionID}/navigate", s.handleNavigate)
	s.router.Post("/v1/analysis/sessions/{sessionID}/save", s.handleSaveSession)
	s.router.Delete("/v1/analysis/sessions/{sessionID}", s.handleAbandonSession)

	s.router.Get("/v1/analyses", s.handleListAnalyses)
	s.router.Get("/v1/analyses/{analysisID}", s.handleGetAnalysis)

	s.router.Post("/v1/chat", s.handleChat)
}

// sessionRegistry tracks open analysis sessions by id. Sessions are purely
// in-memory; abandoning one discards its histories without touching the
// catalog.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*analysis.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*analysis.Session)}
}

func (r *sessionRegistry) add(sess *analysis.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = sess
}

func (r *sessionRegistry) get(id string) (*analysis.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

func (r *sessionRegistry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the engine and catalog error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analysis.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrUnknownQuestion), errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrDocumentUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrCompletionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
