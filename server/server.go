// Package server exposes the storage gateway over HTTP: the /api/files routes of the file manager, health and
// Prometheus metrics. Requests carry their own bearer credential; the server never mints or refreshes one.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c2fo/drivefm/config"
)

// Server is the drivefmd HTTP server.
type Server struct {
	httpServer      *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New builds the server and its routes. newGateway is called once per API request with the request's credential.
func New(cfg *config.Config, logger *slog.Logger, newGateway GatewayFactory) *Server {
	files := &FilesHandler{
		newGateway:       newGateway,
		folderID:         cfg.FolderID,
		maxUploadBytes:   cfg.HTTP.MaxUploadBytes,
		thumbMaxEdge:     cfg.Thumbnail.MaxEdge,
		thumbCacheMaxAge: cfg.Thumbnail.CacheMaxAge,
		logger:           logger.With(slog.String("component", "files_handler")),
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(files, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &Server{
		httpServer:      srv,
		logger:          logger,
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}
}

// NewRouter wires the middleware chain and every route.
func NewRouter(files *FilesHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(Metrics)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": config.Version})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/files", func(r chi.Router) {
		r.Get("/", files.ListFiles)
		r.Post("/", files.UploadFile)
		r.Get("/{id}", files.DownloadFile)
		r.Patch("/{id}", files.RenameFile)
		r.Delete("/{id}", files.DeleteFile)
		r.Get("/{id}/thumbnail", files.Thumbnail)
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run listens on the configured address and serves until ctx is done or the process receives SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", slog.String("addr", ln.Addr().String()))
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
