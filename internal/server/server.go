// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spatialintel/internal/config"
	"spatialintel/internal/domain/event"
	"spatialintel/internal/domain/trend"
	"spatialintel/internal/logger"
	"spatialintel/internal/metrics"
	ratelimit "spatialintel/internal/middleware"
	"spatialintel/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Deps are the services the routes are wired to
type Deps struct {
	Gateway  event.Gateway
	Analyzer trend.Analyzer
	// Limiter throttles ingestion; nil disables rate limiting
	Limiter              ratelimit.Limiter
	DefaultWindowMinutes int
	Logger               *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	router := NewRouter(cfg, deps)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// NewRouter builds the route tree
func NewRouter(cfg config.ServerConfig, deps Deps) *chi.Mux {
	router := chi.NewRouter()

	l := deps.Logger
	if l == nil {
		l = logger.L()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.AccessMiddleware(l))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))
	router.Use(observeDuration)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	eventHandler := handlers.NewEventHandler(deps.Gateway)
	trendHandler := handlers.NewTrendHandler(deps.Analyzer, deps.DefaultWindowMinutes)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"service":"spatial-intel","status":"running"}`))
	})

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.With(rateLimiter(deps.Limiter)).Post("/", eventHandler.CreateEvent)
		r.Get("/in-bbox", eventHandler.ListEventsInBBox)
		r.Get("/in-bbox-time", eventHandler.ListEventsInBBoxTime)
		r.Get("/changes-in-bbox", trendHandler.GetChanges)
		r.Get("/health", eventHandler.Health)
	})

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

func rateLimiter(l ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.RateLimit(l)
}

// observeDuration records latency by matched route pattern
func observeDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.RequestDurationMs.
			WithLabelValues(route, r.Method).
			Observe(float64(time.Since(start).Microseconds()) / 1000)
	})
}
