// Package web serves the channel grid and player to browsers, plus a small JSON API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/PizzaHomicide/rotv/internal/config"
	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/gin-gonic/gin"
)

// Server wires the gin engine to the channel source
type Server struct {
	addr     string
	engine   *gin.Engine
	sessions *SessionStore
}

// NewServer builds the engine and registers all routes
func NewServer(cfg *config.Config, source ChannelSource) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.SetHTMLTemplate(parseTemplates())

	sessions := NewSessionStore(cfg.Server.SessionTTL, cfg.Server.MaxSessions)
	handler := NewHandler(source, sessions, cfg.UI.Columns, cfg.UI.LabelWidth)

	SetupPageRoutes(engine.Group("/"), handler)
	SetupAPIRoutes(engine.Group("/api"), handler)
	SetupOpsRoutes(engine.Group("/"))

	return &Server{addr: cfg.Server.Addr, engine: engine, sessions: sessions}
}

// Handler exposes the engine, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Slog().Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Web UI listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down web UI")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
