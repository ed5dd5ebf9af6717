// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/config"
)

// Build information, set with -ldflags at release time.
var (
	Version = "0.1.0"
	Build   = "dev"
)

type versionInfo struct {
	Version string
	Build   string
}

// Routes is a sub-API mounted on the application router.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

type Server struct {
	config     config.ServerConfig
	logger     *zap.Logger
	router     *mux.Router
	httpServer *http.Server
	metrics    *Metrics
	health     *HealthChecker
	version    versionInfo
	startTime  time.Time
}

// NewServer wires the operational endpoints and mounts the sub-APIs behind
// them. A nil metrics or health checker gets an empty one.
func NewServer(cfg config.ServerConfig, logger *zap.Logger, metrics *Metrics, health *HealthChecker, routes ...Routes) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if health == nil {
		health = NewHealthChecker()
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		router:    mux.NewRouter(),
		metrics:   metrics,
		health:    health,
		version:   versionInfo{Version: Version, Build: Build},
		startTime: time.Now(),
	}

	s.setupRoutes(routes)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes(routes []Routes) {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ready", s.handleReady).Methods("GET")
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	s.router.Use(s.loggingMiddleware)

	app := chi.NewRouter()
	for _, r := range routes {
		r.RegisterRoutes(app)
	}

	// Application catch-all (MUST be last)
	s.router.PathPrefix("/").Handler(app)
}

// Handler is the full middleware stack, compressed responses included.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
