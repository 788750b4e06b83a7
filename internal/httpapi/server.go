package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"adaptive-engine/internal/config"
	"adaptive-engine/internal/engine"
	"adaptive-engine/internal/logger"
)

// Server is the HTTP frontend for the engine, grounded on the teacher's
// event-service/internal/server/server.go Start/Stop lifecycle.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	handler    *Handler
}

func NewServer(cfg *config.Config, e *engine.Engine, log *logger.Logger) *Server {
	return &Server{
		config:  cfg,
		handler: NewHandler(e, log),
	}
}

func (s *Server) router() *gin.Engine {
	if s.config.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", s.handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/users/:user_id/session", s.handler.StartSession)
		v1.POST("/sessions/:session_id/attempts", s.handler.RecordAttempt)
		v1.POST("/sessions/:session_id/complete", s.handler.CompleteSession)
		v1.POST("/sessions/:session_id/problems/:leetcode_id/skip", s.handler.SkipProblem)
		v1.POST("/sessions/classify-stale", s.handler.ClassifyStaleSession)
	}
	return r
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.HTTPPort,
		Handler:      s.router(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
