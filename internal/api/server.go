package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/dharsanguruparan/CreativeBrief/internal/config"
	"github.com/dharsanguruparan/CreativeBrief/internal/navigation"
	"github.com/dharsanguruparan/CreativeBrief/internal/repository"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
	"github.com/dharsanguruparan/CreativeBrief/internal/signing"
)

// Archive is the read and status side of the submission archive.
type Archive interface {
	Get(ctx context.Context, sessionID string) (*repository.Submission, error)
	MarkSent(ctx context.Context, sessionID string) error
	MarkFailed(ctx context.Context, sessionID, msg string) error
}

// Server exposes the questionnaire over HTTP.
type Server struct {
	cfg      *config.Config
	sessions *session.Store
	nav      *navigation.Controller
	signer   *signing.Signer
	archive  Archive
	// queued is true when completion emails go through the worker, in which
	// case the worker records the delivery outcome.
	queued bool
	server *http.Server
	once   sync.Once
}

// New constructs a Server. archive may be nil.
func New(cfg *config.Config, sessions *session.Store, nav *navigation.Controller, signer *signing.Signer, archive Archive) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		nav:      nav,
		signer:   signer,
		archive:  archive,
		queued:   cfg.NotifyMode == config.NotifyQueue,
	}
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/questions", s.handleQuestions).Methods(http.MethodGet)
	r.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/answer", s.handleAnswer).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/files", s.handleFiles).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/back", s.handleBack).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/submit", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/export", s.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/submissions/{id}", s.handleSubmission).Methods(http.MethodGet)
	return corsMiddleware(loggingMiddleware(r))
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.once.Do(func() {
		s.server = &http.Server{
			Addr:              s.cfg.Address,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()
	log.Printf("api listening on %s", s.cfg.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondTransitionError maps controller and store errors to HTTP statuses.
func respondTransitionError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *navigation.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string][]string{"errors": verr.Reasons})
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, navigation.ErrStorageUnavailable):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, navigation.ErrTerminal),
		errors.Is(err, navigation.ErrNotAtQuestion),
		errors.Is(err, navigation.ErrNotAtEmail),
		errors.Is(err, navigation.ErrWrongModality),
		errors.Is(err, errNotCompleted):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
