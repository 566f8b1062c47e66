package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	mw "github.com/rezkam/ledger/internal/infrastructure/http/middleware"
	"github.com/rezkam/ledger/internal/infrastructure/http/response"
)

// Default configuration values for the HTTP server.
const (
	DefaultHost              = "" // Empty means all interfaces (0.0.0.0)
	DefaultPort              = "8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1MB
	DefaultMaxBodyBytes      = 1 << 20 // 1MB
	healthCheckTimeout       = 2 * time.Second
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	// TLS is enabled when both files are set.
	TLSCertFile string
	TLSKeyFile  string
}

// applyDefaults sets default values for any unset (zero) fields.
func (cfg *ServerConfig) applyDefaults() {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIServer wraps the HTTP server with router and all HTTP concerns.
type APIServer struct {
	server      *http.Server
	tlsCertFile string
	tlsKeyFile  string
}

// NewAPIServer creates a new HTTP server with router, middleware, and all HTTP concerns configured.
// The apiHandler is mounted under /api. health may be nil.
// Applies defaults for zero or invalid config values.
func NewAPIServer(apiHandler http.Handler, health Pinger, cfg ServerConfig) *APIServer {
	cfg.applyDefaults()

	router := setupRouter(apiHandler, health, cfg)
	httpServer := setupHTTPServer(router, cfg)

	return &APIServer{
		server:      httpServer,
		tlsCertFile: cfg.TLSCertFile,
		tlsKeyFile:  cfg.TLSKeyFile,
	}
}

// setupRouter creates and configures the Chi router with all middleware and routes.
func setupRouter(apiHandler http.Handler, health Pinger, cfg ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middlewares (applied to all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				slog.WarnContext(r.Context(), "Health check failed", "error", err)
				response.Error(w, "UNAVAILABLE", "storage unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Mount("/api", apiHandler)

	return otelhttp.NewHandler(r, "ledger.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// setupHTTPServer creates the net/http.Server with the given router and config.
func setupHTTPServer(router http.Handler, cfg ServerConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *APIServer) Start() error {
	if s.tlsCertFile != "" && s.tlsKeyFile != "" {
		slog.Info("Starting HTTPS server", "addr", s.server.Addr)
		return s.server.ListenAndServeTLS(s.tlsCertFile, s.tlsKeyFile)
	}
	slog.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
// The provided context controls the timeout for outstanding requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler (router) for testing purposes.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
