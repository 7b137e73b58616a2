// Package server exposes repository management and search over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/adamancini/neosearch/internal/catalog"
	"github.com/adamancini/neosearch/internal/changes"
	"github.com/adamancini/neosearch/internal/config"
	"github.com/adamancini/neosearch/internal/pager"
)

// shutdownTimeout bounds how long Run waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// Server serves the HTTP API over an in-memory entry store. The store is
// rebuilt after every repository change made through the API and
// whenever Watch detects a change on disk.
type Server struct {
	configPath string
	loader     catalog.Loader
	logger     *slog.Logger
	perPage    int

	// writeMu serializes config mutations made through the API, each a
	// load-modify-save of the config file followed by a reload.
	writeMu sync.Mutex

	mu    sync.RWMutex
	cfg   *config.Config
	store *catalog.Store
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and reload logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPerPage sets the page size used when a search asks for a page
// without per_page.
func WithPerPage(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// New creates a server for the config file at configPath. Call Reload
// before serving to populate the store.
func New(configPath string, loader catalog.Loader, opts ...Option) *Server {
	s := &Server{
		configPath: configPath,
		loader:     loader,
		logger:     slog.New(slog.DiscardHandler),
		perPage:    pager.DefaultPerPage,
		cfg:        &config.Config{},
		store:      catalog.NewStore(nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload re-reads the config and rebuilds the entry store. On error the
// previous config and store stay in place.
func (s *Server) Reload(ctx context.Context) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	store := catalog.Build(ctx, cfg.Repositories(), s.loader)
	for _, f := range store.Failures() {
		s.logger.Warn("repository skipped", "repository", f.Repository, "err", f.Err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.store = store
	s.mu.Unlock()

	s.logger.Info("entries loaded", "repositories", len(cfg.Repositories()), "entries", store.Len())
	return nil
}

func (s *Server) snapshot() (*config.Config, *catalog.Store) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.store
}

// Handler returns the API routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Repositories
	mux.HandleFunc("POST /repositories/add", s.addRepository)
	mux.HandleFunc("POST /repositories/delete", s.deleteRepository)
	mux.HandleFunc("GET /repositories/list", s.listRepositories)

	// Search
	mux.HandleFunc("GET /search", s.search)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return withRequestLogging(s.logger, mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Watch reloads the store whenever detector reports a change, checking
// every interval until ctx is cancelled.
func (s *Server) Watch(ctx context.Context, detector *changes.Detector, interval time.Duration) error {
	refs := func() []string {
		// Re-read the config so an edit's new repositories are hashed.
		if cfg, err := config.Load(s.configPath); err == nil {
			return cfg.Repositories()
		}
		cfg, _ := s.snapshot()
		return cfg.Repositories()
	}

	err := detector.Watch(ctx, interval, refs, func(c changes.Change) {
		if err := s.Reload(ctx); err != nil {
			s.logger.Error("reload failed", "err", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
