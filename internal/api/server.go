// Package api implements the dashboard HTTP server: project registration,
// scan triggering, and read access to stored scans and graph snapshots.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/srwlli/dashboard-sub004/internal/config"
	"github.com/srwlli/dashboard-sub004/internal/db"
	"github.com/srwlli/dashboard-sub004/internal/jobs"
	"github.com/srwlli/dashboard-sub004/pkg/model"
)

// graphCacheSize bounds how many deserialized graph snapshots stay in memory.
const graphCacheSize = 32

// Server represents the API server
type Server struct {
	cfg      *config.Config
	router   *chi.Mux
	store    *db.Store
	jobRepo  *jobs.Repository
	pipeline *jobs.Pipeline
	graphs   *lru.Cache[uuid.UUID, *model.DependencyGraph]
}

// ServerConfig wires the server's dependencies. Store, JobRepo and Pipeline
// may be nil; the endpoints that need them then answer 503.
type ServerConfig struct {
	Config   *config.Config
	Store    *db.Store
	JobRepo  *jobs.Repository
	Pipeline *jobs.Pipeline
}

// NewServer creates a new API server
func NewServer(cfg ServerConfig) (*Server, error) {
	graphs, err := lru.New[uuid.UUID, *model.DependencyGraph](graphCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg.Config,
		router:   chi.NewRouter(),
		store:    cfg.Store,
		jobRepo:  cfg.JobRepo,
		pipeline: cfg.Pipeline,
		graphs:   graphs,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(corsMiddleware)
}

func (s *Server) setupRoutes() {
	// Health checks
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ready", s.readyCheck)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		// Projects
		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.createProject)
			r.Get("/", s.listProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", s.getProject)
				r.Delete("/", s.deleteProject)
				r.Get("/summary", s.getProjectSummary)
				r.Get("/jobs", s.listProjectJobs)

				r.Post("/scans", s.createScan)
				r.Get("/scans", s.listScans)

				r.Get("/graph", s.getProjectGraph)
				r.Route("/graph/elements/{nodeID}", func(r chi.Router) {
					r.Get("/characteristics", s.getNodeCharacteristics)
					r.Get("/imports", s.getNodeImports)
					r.Get("/exports", s.getNodeExports)
					r.Get("/consumers", s.getNodeConsumers)
					r.Get("/dependencies", s.getNodeDependencies)
					r.Get("/autofill", s.getNodeAutoFill)
				})
			})
		})

		// Scans
		r.Get("/scans/{scanID}", s.getScan)

		// Jobs
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.createJob)
			r.Get("/", s.listJobs)
			r.Get("/{jobID}", s.getJob)
			r.Post("/{jobID}/cancel", s.cancelJob)
			r.Post("/{jobID}/retry", s.retryJob)
		})
	})
}

// corsMiddleware lets the dashboard frontend call the API from another origin
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyCheck(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// nodeParam returns the {nodeID} URL parameter. Node IDs contain slashes
// ("element:src/auth.ts:login"), so clients send them percent-encoded and we
// decode here.
func nodeParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "nodeID"))
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
