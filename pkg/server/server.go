// Package server assembles the HTTP stack around the admin API handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/adfharrison1/cpaas-admin/pkg/api"
	"github.com/adfharrison1/cpaas-admin/pkg/config"
)

// Server holds the router and the http.Server built from config
type Server struct {
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
	logger     *zap.Logger
	cfg        config.ServerConfig
	metrics    *Metrics
	limiter    *ClientLimiter
}

// NewServer wires the API handler into a router with CORS, request logging,
// metrics, rate limiting and panic recovery
func NewServer(cfg config.ServerConfig, apiHandler *api.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		cfg:     cfg,
		metrics: NewMetrics(registry),
	}
	trusted, err := ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Warn("ignoring trusted proxies", zap.Error(err))
		trusted = nil
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewClientLimiter(cfg.RateLimit, cfg.RateBurst, trusted...)
	}

	s.router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	apiHandler.RegisterRoutes(s.router)
	s.router.Use(s.metrics.Middleware)

	// Log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Warn("no route found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		api.WriteJSONError(w, http.StatusNotFound, "route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	var h http.Handler = s.router
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	h = recoveryMiddleware(logger)(h)
	h = requestLoggerMiddleware(logger, trusted)(h)
	h = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}
	return s
}

// Handler exposes the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting cpaas-admin server", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.logger.Info("server exited")
	return nil
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return 30 * time.Second
}
