// Package server is a stand-in RAG backend for working on the client without
// the real API. It lists a fixed set of models and streams back an answer
// describing the request it received.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dminnear-rh/vp-rag-llm-ui/internal/logger"
)

const DefaultAddr = ":8080"

type Server struct {
	cfg         Config
	mux         *http.ServeMux
	localLogger *logger.Logger
}

func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Models == nil {
		cfg.Models = DefaultModels
	}
	if cfg.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Envelope == "" {
		cfg.Envelope = EnvelopeContent
	}

	s := &Server{
		cfg:         cfg,
		mux:         http.NewServeMux(),
		localLogger: logger.NewLogger("devserver"),
	}
	s.registerRoutes()
	return s
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.localLogger.Info("Server started on http://localhost" + s.cfg.Addr + "/")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		s.localLogger.Info("Server stopped")
		return nil
	}
}
