// Package server is the CodeLens HTTP backend.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/yildizm/CodeLens/internal/ai"
	"github.com/yildizm/CodeLens/internal/analyzer"
	"github.com/yildizm/CodeLens/internal/api"
	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/logger"
)

//go:embed static
var staticFiles embed.FS

// Options configures a Server
type Options struct {
	Config    config.ServerConfig
	Analyzers *analyzer.Registry
	Providers *ai.Registry
	Logger    *logger.Logger
}

// Server serves the analysis API and the web form
type Server struct {
	cfg       config.ServerConfig
	analyzers *analyzer.Registry
	providers *ai.Registry
	log       *logger.Logger
	validate  *validator.Validate
	metrics   *metrics
	limiter   *limiter.Limiter
}

// New creates a server. Registries must be non-nil.
func New(opts Options) (*Server, error) {
	if opts.Analyzers == nil || opts.Providers == nil {
		return nil, errors.New("analyzer and provider registries are required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{
		cfg:       opts.Config,
		analyzers: opts.Analyzers,
		providers: opts.Providers,
		log:       log.WithComponent("server"),
		validate:  validator.New(),
		metrics:   getMetrics(),
	}

	if opts.Config.RateLimit != "" {
		rate, err := limiter.NewRateFromFormatted(opts.Config.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit %q: %w", opts.Config.RateLimit, err)
		}
		s.limiter = limiter.New(memory.NewStore(), rate)
	}

	return s, nil
}

// Router builds the route table with per-request middleware
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogger, s.instrument)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc(api.PathSupportedLanguages, s.handleLanguages).Methods(http.MethodGet)
	r.HandleFunc(api.PathSupportedProviders, s.handleProviders).Methods(http.MethodGet)
	r.HandleFunc(api.PathAnalyze, s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc(api.PathHealth, s.handleHealth).Methods(http.MethodGet)
	if s.cfg.EnableMetrics {
		r.Handle(api.PathMetrics, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// Handler wraps the router with CORS, rate limiting and compression
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()

	if s.limiter != nil {
		h = stdlib.NewMiddleware(s.limiter).Handler(h)
	}

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	}).Handler(h)

	return gziphandler.GzipHandler(h)
}

// Start serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
