package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/wudi/resumepdf/convert"
	"github.com/wudi/resumepdf/ctxlog"
	"github.com/wudi/resumepdf/resumeio"
)

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "resumepdf",
		"resume":  "GET /api/resumes/{id}?searchable=true",
		"jobs":    "POST /api/jobs",
		"health":  "GET /healthz",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.CheckWritable(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleResume converts synchronously and streams the PDF.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id, err := resumeio.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts := convert.Options{
		Searchable:    true,
		Extension:     s.cfg.ImageExtension,
		ImageSize:     s.cfg.ImageSize,
		Languages:     s.cfg.Languages,
		MinConfidence: s.cfg.MinConfidence,
		Concurrency:   s.cfg.Concurrency,
	}
	cacheable := true
	q := r.URL.Query()
	if v := q.Get("searchable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid searchable value %q", v))
			return
		}
		opts.Searchable = b
	}
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.Errorf("invalid size value %q", v))
			return
		}
		opts.ImageSize = n
		cacheable = false
	}
	if v := q.Get("ext"); v != "" {
		switch v {
		case "png", "jpeg", "jpg":
			opts.Extension = v
			cacheable = false
		default:
			writeError(w, http.StatusBadRequest, errors.Errorf("unsupported ext value %q", v))
			return
		}
	}

	pdf, err := s.convertAndStore(r.Context(), id, opts.Searchable, opts, cacheable)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writePDF(w, id, pdf)
}

// convertAndStore serves from the files store when possible and writes new
// conversions through. Failed conversions never touch the store.
func (s *Server) convertAndStore(ctx context.Context, id string, searchable bool, opts convert.Options, cacheable bool) ([]byte, error) {
	if cacheable {
		if pdf, ok := s.store.Get(id, searchable); ok {
			ctxlog.FromContext(ctx).Debug("store hit", "resume", id, "searchable", searchable)
			return pdf, nil
		}
	}
	pdf, err := s.converter.Convert(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.store.Put(id, searchable, pdf); err != nil {
			ctxlog.FromContext(ctx).Warn("store write failed", "resume", id, "error", err)
		}
	}
	return pdf, nil
}

type jobRequest struct {
	Resume     string `json:"resume"`
	Searchable *bool  `json:"searchable"`
}

func (s *Server) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding request"))
		return
	}
	id, err := resumeio.ParseID(req.Resume)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	searchable := true
	if req.Searchable != nil {
		searchable = *req.Searchable
	}
	snap := s.jobs.Start(r.Context(), id, searchable)
	w.Header().Set("Location", "/api/jobs/"+snap.ID)
	writeJSON(w, http.StatusAccepted, snap)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.jobs.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown job"))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleJobPDF(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown job"))
		return
	}
	pdf, ok := s.jobs.PDF(id)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("job is %s, no result available", snap.State))
		return
	}
	writePDF(w, snap.Resume, pdf)
}

func (s *Server) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	if !s.jobs.Cancel(r.PathValue("id")) {
		writeError(w, http.StatusConflict, errors.New("job not cancelable"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps pipeline sentinel errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, resumeio.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, resumeio.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resumeio.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	default:
		return http.StatusInternalServerError
	}
}

func writePDF(w http.ResponseWriter, id string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", id+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Write(pdf)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
