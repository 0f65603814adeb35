// Package api exposes the HTTP interface for the aggregation service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/archive"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/catalog"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/job"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/metrics"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/orchestrator"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/progress"
)

// Config tunes server behavior.
type Config struct {
	// RequestTimeout bounds non-streaming handlers.
	RequestTimeout time.Duration
	// SSEHeartbeat is the idle interval before a heartbeat frame is sent.
	SSEHeartbeat time.Duration
}

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.SSEHeartbeat <= 0 {
		c.SSEHeartbeat = 30 * time.Second
	}
	return c
}

// Server wires HTTP handlers to the orchestrator and job registry.
type Server struct {
	router     chi.Router
	orch       *orchestrator.Orchestrator
	registry   *job.Registry
	catalog    catalog.Catalog
	allSources []string
	cfg        Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes. The catalog
// and source list are the defaults used when a submission omits them.
func NewServer(
	orch *orchestrator.Orchestrator,
	registry *job.Registry,
	defaultCatalog catalog.Catalog,
	defaultSources []string,
	cfg Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		orch:       orch,
		registry:   registry,
		catalog:    defaultCatalog,
		allSources: defaultSources,
		cfg:        cfg.withDefaults(),
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeoutMiddleware(s.cfg.RequestTimeout))
			r.Get("/catalog", s.getCatalog)
			r.Post("/jobs", s.submitJob)
			r.Get("/jobs/{job_id}", s.getJob)
			r.Delete("/jobs/{job_id}", s.deleteJob)
		})
		// Streaming and large responses bypass the timeout handler.
		r.Get("/jobs/{job_id}/events", s.streamEvents)
		r.Get("/jobs/{job_id}/download", s.download)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.catalog})
}

type submitRequest struct {
	Categories catalog.Catalog `json:"categories"`
	Sources    []string        `json:"sources"`
}

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// A missing key falls back to the defaults; an explicitly empty list
	// is a client error surfaced by Submit.
	cat := req.Categories
	if cat == nil {
		cat = s.catalog
	}
	sources := req.Sources
	if sources == nil {
		sources = s.allSources
	}

	id, err := s.orch.Submit(r.Context(), cat, sources)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyCategories) || errors.Is(err, orchestrator.ErrNoSources) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("job submission failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "job submission failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": id})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	snap, ok := j.Stream.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		snap, err := j.Stream.Next(ctx, s.cfg.SSEHeartbeat)
		if err != nil {
			// Stream finished or the observer went away.
			return
		}
		data, err := json.Marshal(snap)
		if err != nil {
			s.logger.Error("encode snapshot failed", zap.Error(err))
			return
		}
		if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
			return
		}
		flusher.Flush()
		if snap.Status.Terminal() {
			return
		}
	}
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	j, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	snap, seeded := j.Stream.Latest()
	if !seeded || snap.Status != progress.StatusComplete {
		writeError(w, http.StatusConflict, "job is not complete")
		return
	}
	if _, err := os.Stat(j.OutputDir); err != nil {
		writeError(w, http.StatusNotFound, "output directory not found")
		return
	}
	data, err := archive.ZipDir(j.OutputDir, "study_notes_"+j.ID)
	if err != nil {
		s.logger.Error("zip output failed", zap.String("job_id", j.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="study_notes_`+j.ID+`.zip"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("archive write interrupted", zap.String("job_id", j.ID), zap.Error(err))
	}
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "job_id")
	j, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	outputDir := j.OutputDir
	s.registry.Remove(id)
	if outputDir != "" {
		if err := os.RemoveAll(outputDir); err != nil {
			s.logger.Warn("output cleanup failed", zap.String("job_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) lookupJob(w http.ResponseWriter, r *http.Request) (*job.Job, bool) {
	id := chi.URLParam(r, "job_id")
	j, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return nil, false
	}
	return j, true
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("panic", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
