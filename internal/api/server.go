package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/texgraph/internal/category"
	"github.com/dgallion1/texgraph/internal/config"
	"github.com/dgallion1/texgraph/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for texgraph. It is the external caller of
// the analysis core: it enqueues runs and hands the serialized payloads to
// whatever renders them.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	table        *category.Table
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, table *category.Table, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		table:        table,
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
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/analyze", s.handleAnalyze)
		r.Get("/api/analyze/{jobID}/status", s.handleAnalyzeStatus)
		r.Get("/api/analyze/{jobID}/graph.dot", s.handleGraphDOT)
		r.Get("/api/analyze/{jobID}/graph.tex", s.handleGraphTikZ)
		r.Get("/api/analyze/{jobID}/report", s.handleReport)

		r.Get("/api/categories", s.handleCategories)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
