package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// PreviewServer runs a [PreviewHandler] on a local listener.
type PreviewServer struct {
	addr    string
	handler *PreviewHandler
	logger  *log.Logger
	srv     *http.Server
	ln      net.Listener
	errs    chan error
}

// NewPreviewServer creates a server for addr. Port 0 picks a free port on Start.
func NewPreviewServer(addr string, logger *log.Logger) *PreviewServer {
	return &PreviewServer{
		addr:    addr,
		handler: NewPreviewHandler(""),
		logger:  logger,
		errs:    make(chan error, 1),
	}
}

// Start listens and serves until ctx is done.
func (s *PreviewServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.handler.SetBaseURL("http://" + ln.Addr().String())

	router := NewBasicRouter()
	if s.logger != nil {
		router.Use(Logging(s.logger))
	}
	router.Get(HealthPath, http.HandlerFunc(health))
	router.Mount(s.handler)

	s.srv = &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if s.logger != nil {
			s.logger.Infof("starting preview server at %v", ln.Addr())
		}
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errs <- err
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
	return nil
}

// Shutdown stops the server, waiting up to 5 seconds for open streams.
func (s *PreviewServer) Shutdown() {
	if s.srv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Warn("error shutting down preview server", "error", err)
	}
}

// Errors reports a serve failure after Start.
func (s *PreviewServer) Errors() <-chan error {
	return s.errs
}

// Addr returns the bound address, or the configured one before Start.
func (s *PreviewServer) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Register issues a preview URL for p.
func (s *PreviewServer) Register(p, mimeType string) (string, error) {
	return s.handler.Register(p, mimeType)
}

// Revoke invalidates url.
func (s *PreviewServer) Revoke(url string) {
	s.handler.Revoke(url)
}
