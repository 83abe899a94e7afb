// Package web serves the function study over HTTP: an HTML page, the PNG
// and PDF artifacts, a JSON API and a small tool endpoint.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the handlers. It keeps no per-request state.
type Server struct {
	cfg      config.Config
	analyzer funcstudy.Analyzer
	logger   *slog.Logger
	page     *template.Template
}

// New builds a Server. A nil analyzer uses funcstudy.Pipeline with the
// study options of cfg; a nil logger uses slog.Default().
func New(cfg config.Config, analyzer funcstudy.Analyzer, logger *slog.Logger) (*Server, error) {
	if analyzer == nil {
		analyzer = funcstudy.Pipeline{Options: cfg.Study.Options()}
	}
	if logger == nil {
		logger = slog.Default()
	}
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{cfg: cfg, analyzer: analyzer, logger: logger, page: page}, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /plot.png", s.handlePlot)
	mux.HandleFunc("GET /export.pdf", s.handleExport)
	mux.HandleFunc("POST /api/study", s.handleStudy)
	mux.HandleFunc("POST /tool", s.handleTool)
	mux.HandleFunc("GET /schema", s.handleSchema)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.withRequestID(s.withAccessLog(s.withRecover(mux)))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("funcstudy server listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	s.logger.Info("funcstudy server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
