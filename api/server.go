package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"krisha_scrooper/logging"
)

type Server struct {
	addr       string
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(addr string, router *gin.Engine) *Server {
	return &Server{
		addr:   addr,
		router: router,
	}
}

// Start serves in the background. errCh receives the listener error, if any.
func (s *Server) Start() <-chan error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Infof("starting HTTP server on %s", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logging.Infof("stopping HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	logging.Infof("HTTP server stopped")
	return nil
}
