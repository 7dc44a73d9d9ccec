package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/patentdraft/internal/config"
	"github.com/dgallion1/patentdraft/internal/generate"
	"github.com/dgallion1/patentdraft/internal/metrics"
	"github.com/dgallion1/patentdraft/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for patent drafting.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	claude       *generate.ClaudeGenerator
	metrics      *metrics.Collector
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. claude and coll may be
// nil when the server runs with the template generator or without metrics.
func NewServer(orch *pipeline.Orchestrator, claude *generate.ClaudeGenerator, coll *metrics.Collector, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		claude:       claude,
		metrics:      coll,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DraftAPIKey, s.log))

		r.Post("/api/drafts", s.handleSubmitDraft)
		r.Post("/api/drafts/batch", s.handleBatchSubmit)
		r.Get("/api/drafts/{jobID}/status", s.handleDraftStatus)
		r.Get("/api/drafts/{jobID}", s.handleGetDraft)
		r.Get("/api/drafts/{jobID}/report", s.handleDraftReport)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
