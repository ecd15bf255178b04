package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lazypower/brickdecay/internal/shell"
	"github.com/lazypower/brickdecay/internal/store"
)

// Options configures optional server behaviour. The zero value is usable.
type Options struct {
	Logger      *zap.Logger
	CORSOrigins []string
	// Metrics exposes /metrics when true. Instrumentation runs either way.
	Metrics bool
}

// Server is the brickdecay HTTP API server and web shell host.
type Server struct {
	db       *store.DB
	router   chi.Router
	logger   *zap.Logger
	metrics  *metrics
	registry *prometheus.Registry
	validate *validator.Validate
	version  string
	started  time.Time
}

// New creates a new Server. db may be nil, in which case the report history
// routes answer 503.
func New(db *store.DB, version string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		db:       db,
		logger:   logger,
		metrics:  newMetrics(reg),
		registry: reg,
		validate: validator.New(),
		version:  version,
		started:  time.Now(),
	}

	if uiFS != nil {
		if missing := shell.Verify(uiFS); len(missing) > 0 {
			logger.Warn("web shell is missing cached assets", zap.Strings("assets", missing))
		}
	}

	s.routes(origins, opts.Metrics)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(origins []string, exposeMetrics bool) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", s.handleHealth)
		r.Get("/shell", s.handleShell)
		r.Get("/content-types", s.handleContentTypes)

		r.Get("/retention", s.handleRetention)
		r.Get("/steps", s.handleSteps)
		r.Get("/curve", s.handleCurve)
		r.Get("/optimize", s.handleOptimize)
		r.Get("/perceptual", s.handlePerceptual)
		r.Get("/bricks", s.handleBricks)
		r.Get("/validate", s.handleValidate)

		r.Post("/report", s.handleReport)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{reportID}", s.handleGetReport)
		r.Delete("/reports/{reportID}", s.handleDeleteReport)
	})

	if exposeMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Get("/*", shellHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      false,
	}
	if s.db != nil {
		resp["db"] = s.db.Ping() == nil
		resp["db_path"] = s.db.Path
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, shell.Current())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
