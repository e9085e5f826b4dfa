// Package server exposes the conversion pipeline over HTTP: synchronous
// conversions, asynchronous jobs, and a health probe.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/wudi/resumepdf/config"
	"github.com/wudi/resumepdf/convert"
	"github.com/wudi/resumepdf/ctxlog"
	"github.com/wudi/resumepdf/jobs"
	"github.com/wudi/resumepdf/store"
)

// Converter runs one conversion. Satisfied by *convert.Converter; stubbed in
// tests.
type Converter interface {
	Convert(ctx context.Context, id string, opts convert.Options) ([]byte, error)
}

// Server wires the HTTP surface to the pipeline, the files store, and the
// job manager.
type Server struct {
	cfg       config.Config
	converter Converter
	store     *store.Store
	jobs      *jobs.Manager
	log       *slog.Logger
}

// New assembles a Server. The job manager is owned by the server and closed
// on shutdown.
func New(cfg config.Config, converter Converter, st *store.Store, log *slog.Logger) *Server {
	s := &Server{cfg: cfg, converter: converter, store: st, log: log}
	s.jobs = jobs.NewManager(s.runJob, cfg.JobRetention.Std())
	return s
}

func (s *Server) runJob(ctx context.Context, resume string, searchable bool) ([]byte, error) {
	return s.convertAndStore(ctx, resume, searchable, convert.Options{
		Searchable:    searchable,
		Extension:     s.cfg.ImageExtension,
		ImageSize:     s.cfg.ImageSize,
		Languages:     s.cfg.Languages,
		MinConfidence: s.cfg.MinConfidence,
		Concurrency:   s.cfg.Concurrency,
	}, true)
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/resumes/{id}", s.handleResume)
	mux.HandleFunc("POST /api/jobs", s.handleJobCreate)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleJobStatus)
	mux.HandleFunc("GET /api/jobs/{id}/pdf", s.handleJobPDF)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleJobCancel)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return s.withRecovery(s.withLogging(mux))
}

// Run serves until ctx is canceled, then drains within the shutdown grace
// period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctxlog.WithLogger(context.Background(), s.log)
		},
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down", "grace", s.cfg.ShutdownGrace.Std())
	s.jobs.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Jobs exposes the manager for tests.
func (s *Server) Jobs() *jobs.Manager { return s.jobs }
