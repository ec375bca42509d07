package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"editor-web/config"
	"editor-web/internal/handler"
	"editor-web/internal/metrics"
	"editor-web/internal/middleware"
	"editor-web/internal/session"
	"editor-web/pkg/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Health *handler.HealthHandler
}

// Dependencies are the shared pieces the middleware chain needs.
type Dependencies struct {
	SessionStore sessions.Store
	Sessions     session.Manager
	Templates    *template.Template
	Metrics      *metrics.AuthMetrics
	// Limiter is optional; nil disables rate limiting.
	Limiter middleware.AuthLimiter
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mostly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, deps Dependencies) {
	if deps.Templates != nil {
		s.engine.SetHTMLTemplate(deps.Templates)
	}

	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(session.Middleware(deps.SessionStore))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	s.engine.Use(middleware.SessionUserMiddleware(deps.Sessions))
	s.engine.Use(middleware.CSRFMiddleware(s.logger))
	if deps.Limiter != nil {
		s.engine.Use(middleware.RateLimitMiddleware(deps.Limiter, s.logger))
	}

	s.engine.GET("/healthz", handlers.Health.Health)
	if deps.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Every other page goes through the dispatcher.
	s.engine.GET("/", handlers.Auth.Dispatch)
	s.engine.POST("/", handlers.Auth.Dispatch)
	s.engine.GET("/:path", handlers.Auth.Dispatch)
	s.engine.POST("/:path", handlers.Auth.Dispatch)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
