// Package server provides the HTTP API for per-job retrieval sessions.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/shortlist/internal/config"
	"github.com/hyperjump/shortlist/internal/embedding"
	"github.com/hyperjump/shortlist/internal/metrics"
	"github.com/hyperjump/shortlist/internal/storage"
	"github.com/hyperjump/shortlist/pkg/utils"
)

// Server is the HTTP server for the shortlist API.
type Server struct {
	sessions *sessionRegistry
	repo     *storage.CandidateRepository
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server. repo may be nil, in which case sessions cannot load
// resumes from the candidate repository.
func NewServer(cfg *config.Config, embedder embedding.Embedder, repo *storage.CandidateRepository, logger *zap.Logger) *Server {
	logger = utils.OrNop(logger)
	return &Server{
		sessions: newSessionRegistry(embedder, cfg.Retrieval, logger),
		repo:     repo,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/resumes", s.handleIndexResumes)
			r.Post("/jobs", s.handleIndexJob)
			r.Post("/retrieve", s.handleRetrieve)
			r.Post("/reset", s.handleReset)
		})
	})
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	metrics.Register()
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and drops every session.
func (s *Server) Stop(ctx context.Context) error {
	defer s.sessions.closeAll()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestLogger emits one log line per request.
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http_request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
