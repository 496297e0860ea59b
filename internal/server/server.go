package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP server around the configured router.
type Server struct {
	http *http.Server
}

// New creates a new server instance
func New(router *gin.Engine, host, port string) *Server {
	return &Server{
		http: &http.Server{
			Addr:    host + ":" + port,
			Handler: router,
		},
	}
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
