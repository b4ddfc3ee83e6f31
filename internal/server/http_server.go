package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"go-linkedin-harvester/internal/config"
)

type HTTPServer struct {
	server *http.Server
	log    *zap.Logger
}

// NewHTTPServer binds the router to the configured port for the lifetime of the fx app.
func NewHTTPServer(lc fx.Lifecycle, router *gin.Engine, cfg *config.Config, log *zap.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	s := &HTTPServer{server: srv, log: log.With(zap.String("component", "http_server"))}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("🌐 UI and API running", zap.String("addr", s.Addr()))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Fatal("failed to start HTTP server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("shutting down HTTP server")
			return srv.Shutdown(ctx)
		},
	})
	return s
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}
