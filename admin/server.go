package admin

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/FelixKahle/leafs/logger"
	"github.com/FelixKahle/leafs/module"
)

// Server exposes a module.Manager over HTTP for operational inspection and
// control. It is a supplementary surface; the registry itself has no network
// dependency.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mgr        *module.Manager
	log        *logger.Logger
}

// New creates an admin server over the given manager and registers its routes.
func New(cfg Config, mgr *module.Manager, log *logger.Logger) *Server {
	// Set Gin mode based on global zerolog level.
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		engine: engine,
		mgr:    mgr,
		log:    log.WithComponent("admin"),
	}

	s.registerRoutes()
	return s
}

// Engine returns the underlying Gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.healthz)
	s.engine.GET("/info", s.info)
	s.engine.GET("/modules", s.listModules)
	s.engine.GET("/modules/:name", s.getModule)
	s.engine.POST("/modules/:name/load", s.loadModule)
	s.engine.POST("/modules/:name/unload", s.unloadModule)
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a
// goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("admin server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Admin server error", logger.Fields(
				"error", err.Error(),
			))
		}
	}()

	s.log.Info("Admin server started", logger.Fields(
		"addr", s.httpServer.Addr,
	))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("admin server shutdown error: %w", err)
	}

	s.log.Info("Admin server shut down")
	return nil
}
