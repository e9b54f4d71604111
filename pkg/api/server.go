// Package api provides a read-only HTTP status API for a running node.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/six7/six7-node/pkg/fabric"
	"github.com/six7/six7-node/pkg/registry"
)

// Server exposes node introspection over HTTP. It never mutates the node
// or the registry.
type Server struct {
	node       fabric.Node
	peers      *registry.Registry
	room       string
	router     *gin.Engine
	httpServer *http.Server
	log        zerolog.Logger
}

// NewServer creates the status API server.
func NewServer(node fabric.Node, peers *registry.Registry, room string, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		node:   node,
		peers:  peers,
		room:   room,
		router: router,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		node := v1.Group("/node")
		{
			node.GET("/info", s.handleInfo)
			node.GET("/peers", s.handlePeers)
			node.GET("/telemetry", s.handleTelemetry)
		}
	}

	// Health check endpoint (outside versioning)
	s.router.GET("/health", s.handleHealth)
}

// Start begins serving on addr. It returns once the listener is running;
// serve errors after startup are logged, not returned.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.log.Info().Str("addr", addr).Msg("status API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("status API server error")
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
