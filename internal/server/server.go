package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"docscan/internal/api"
	"docscan/internal/config"
	"docscan/internal/home"
	"docscan/internal/infer"
	"docscan/internal/providers"
	"docscan/internal/scanstore"
	"docscan/internal/server/endpoints"
	"docscan/internal/svcctx"
)

// Server is the main docscan HTTP server.
// When configured to manage the inference sidecar, it starts the
// container on server start and stops it on shutdown.
type Server struct {
	httpServer   *http.Server
	inferManager *infer.DockerManager
	manageInfer  bool
	registry     *providers.Registry
	scanStore    *scanstore.Store
	configMgr    *config.Manager
	homeDir      *home.Dir
	logger       *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the docscan home directory
	Home *home.Dir
	// ManageInfer starts and stops the inference container with the server
	ManageInfer bool
	// InferConfig holds inference container settings
	InferConfig infer.DockerConfig
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		var err error
		cfg.Home, err = home.New("")
		if err != nil {
			return nil, err
		}
	}

	var inferManager *infer.DockerManager
	if cfg.ManageInfer {
		var err error
		inferManager, err = infer.NewDockerManager(cfg.InferConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create infer manager: %w", err)
		}
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	// If config manager provided, set up providers and hot reload
	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToRegistryConfig())

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		inferManager: inferManager,
		manageInfer:  cfg.ManageInfer,
		registry:     registry,
		configMgr:    cfg.ConfigManager,
		homeDir:      cfg.Home,
		logger:       cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{InferManager: inferManager}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(withCORS(mux)),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server (and the inference sidecar when managed).
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if s.manageInfer {
		// Validate any existing container matches our config
		if err := s.inferManager.ValidateExisting(ctx); err != nil {
			s.setNotRunning()
			return fmt.Errorf("existing inference container incompatible: %w", err)
		}

		s.logger.Info("starting inference sidecar")
		if err := s.inferManager.Start(ctx); err != nil {
			s.setNotRunning()
			return fmt.Errorf("failed to start inference sidecar: %w", err)
		}
		s.logger.Info("inference sidecar is ready", "url", s.inferManager.URL())
	}

	// Open scan history store
	if err := s.homeDir.EnsureExists(); err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	store, err := scanstore.New(s.homeDir.ScanDBPath(), s.logger)
	if err != nil {
		_ = s.shutdown()
		return fmt.Errorf("failed to open scan store: %w", err)
	}
	s.scanStore = store

	// Create services struct for context enrichment
	s.services = &svcctx.Services{
		Config:    s.configMgr,
		Registry:  s.registry,
		ScanStore: s.scanStore,
		Infer:     s.inferManager,
		Logger:    s.logger,
		Home:      s.homeDir,
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server, scan store,
// and the inference sidecar when managed.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	// Shutdown HTTP server with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.scanStore != nil {
		if err := s.scanStore.Close(); err != nil {
			s.logger.Error("scan store close error", "error", err)
		}
	}

	if s.manageInfer {
		s.logger.Info("stopping inference sidecar")
		if err := s.inferManager.Stop(shutdownCtx); err != nil {
			s.logger.Error("inference sidecar stop error", "error", err)
		}
		if err := s.inferManager.Close(); err != nil {
			s.logger.Error("infer manager close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// ScanStore returns the scan store.
// Returns nil if the server hasn't started yet.
func (s *Server) ScanStore() *scanstore.Store {
	return s.scanStore
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withCORS allows browser clients on other origins to call the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the scan store is ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.scanStore == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
