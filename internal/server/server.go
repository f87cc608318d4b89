package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"masterpieces-api/internal/api"
	"masterpieces-api/internal/observability/logging"
	"masterpieces-api/internal/observability/metrics"
)

// Config carries the server-level configuration.
type Config struct {
	Addr    string
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Server hosts the API routes behind the middleware chain.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// New assembles the route table and middleware chain around the provided
// handler.
func New(handler *api.Handler, cfg Config) *Server {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handler.Health)
	mux.Handle("/metrics", recorder.Handler())
	mux.HandleFunc("/api/auth", withCORS(corsPolicy{
		methods:    []string{http.MethodGet, http.MethodPost},
		authHeader: true,
	}, handler.Auth))
	mux.HandleFunc("/api/products", withCORS(corsPolicy{
		methods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		authHeader: true,
	}, handler.Products))
	mux.HandleFunc("/api/products/bulk-rename", withCORS(corsPolicy{
		methods:    []string{http.MethodPost},
		authHeader: true,
	}, handler.BulkRenameProducts))
	mux.HandleFunc("/api/media", withCORS(corsPolicy{
		methods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		authHeader: true,
	}, handler.Media))
	mux.HandleFunc("/api/videos", withCORS(corsPolicy{
		methods:    []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		authHeader: true,
	}, handler.Videos))
	mux.HandleFunc("/api/masters", withCORS(corsPolicy{
		methods:    []string{http.MethodGet, http.MethodPut, http.MethodDelete},
		authHeader: true,
	}, handler.Masters))
	mux.HandleFunc("/api/reviews", withCORS(corsPolicy{
		methods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}, handler.Reviews))
	mux.HandleFunc("/api/orders", withCORS(corsPolicy{
		methods: []string{http.MethodPost},
	}, handler.Orders))
	mux.HandleFunc("/api/upload", withCORS(corsPolicy{
		methods:    []string{http.MethodPost},
		authHeader: true,
	}, handler.Upload))
	mux.HandleFunc("/api/analyze", withCORS(corsPolicy{
		methods:    []string{http.MethodPost},
		authHeader: true,
	}, handler.Analyze))
	mux.HandleFunc("/api/cleanup", withCORS(corsPolicy{
		methods:    []string{http.MethodPost},
		authHeader: true,
	}, handler.Cleanup))

	handlerChain := http.Handler(mux)
	handlerChain = recoveryMiddleware(cfg.Logger, handlerChain)
	handlerChain = metrics.HTTPMiddleware(recorder, handlerChain)
	if cfg.Logger != nil {
		handlerChain = logging.RequestLogger(cfg.Logger)(handlerChain)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlerChain,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		logger:     cfg.Logger,
		metrics:    recorder,
	}
}

// Handler exposes the assembled handler chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving requests until the listener fails or Shutdown is
// invoked.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return fmt.Errorf("http server is not configured")
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// recoveryMiddleware converts panics into the JSON error envelope so a bad
// request can never take down the process or leak a stack trace.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if logger != nil {
					logger.Error("handler panic",
						"method", r.Method,
						"path", r.URL.Path,
						"panic", recovered)
				}
				w.Header().Set("Access-Control-Allow-Origin", "*")
				api.WriteError(w, http.StatusInternalServerError, errors.New("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
