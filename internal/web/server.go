// Package web exposes the reconciliation service over HTTP. Every endpoint
// speaks JSON, except the downloads, which return file attachments.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/metrics"
	"github.com/JonMunkholm/recon/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// multipartOverhead is the slack allowed on top of the file size limit for
// form fields and multipart boundaries.
const multipartOverhead = 1 << 20

// HealthChecker is implemented by report stores that can verify their
// connection.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the reconciliation service.
type Server struct {
	service     *core.Service
	cfg         *config.Config
	metrics     *metrics.Recorder
	health      HealthChecker
	defaultLang core.Language

	router *chi.Mux
	server *http.Server
	stop   context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records HTTP metrics and serves GET /metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Server) { s.metrics = r }
}

// WithHealthCheck makes GET /healthz ping h.
func WithHealthCheck(h HealthChecker) Option {
	return func(s *Server) { s.health = h }
}

// NewServer creates a Server with all middleware and routes installed.
func NewServer(service *core.Service, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		service:     service,
		cfg:         cfg,
		defaultLang: core.ParseLanguage(cfg.Report.DefaultLanguage),
		router:      chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel

	s.setupMiddleware(ctx)
	s.setupRoutes(ctx)
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware(ctx context.Context) {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(middleware.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(ctx, s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(ctx context.Context) {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// File processing is expensive; it gets its own, tighter limit.
	processing := func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			r.Use(s.newLimiter(ctx, s.cfg.Rate.UploadLimit).middleware)
		}
	}

	s.router.Route("/violations", func(r chi.Router) {
		r.Get("/reports", s.handleListReports)
		r.Get("/report/{id}", s.handleGetReport)
		r.Get("/download/{id}", s.handleDownloadReport)
		r.Delete("/delete/{id}", s.handleDeleteReport)

		r.Group(func(r chi.Router) {
			processing(r)
			r.Post("/upload", s.handleViolationsUpload)
		})
	})

	s.router.Route("/comparison", func(r chi.Router) {
		r.Post("/download-differences", s.handleDownloadDifferences)

		r.Group(func(r chi.Router) {
			processing(r)
			r.Post("/compare", s.handleCompare)
		})
	})

	s.router.Route("/merge", func(r chi.Router) {
		r.Post("/download-txt", s.handleMergeDownloadText)
		r.Post("/download-excel", s.handleMergeDownloadExcel)

		r.Group(func(r chi.Router) {
			processing(r)
			r.Post("/process", s.handleMerge)
		})
	})
}

// newLimiter creates a per-IP limiter whose sweeper stops with ctx.
func (s *Server) newLimiter(ctx context.Context, perMinute int) *rateLimiter {
	rl := newRateLimiter(perMinute)
	go rl.run(ctx)
	return rl
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and the rate limiter sweepers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
