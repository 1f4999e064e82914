package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// defaultHistoryLimit bounds /api/exports/history without a limit parameter.
const defaultHistoryLimit = 20

// exportRequest is the body of POST /api/exports.
type exportRequest struct {
	Intent domain.SearchIntent `json:"intent"`
	Format string              `json:"format"`
}

// pingResponse is the body of GET /api/ping.
type pingResponse struct {
	Count     int64 `json:"count"`
	LatencyMS int64 `json:"latencyMs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	result, err := s.ports.Search.Ping(r.Context())
	if err != nil {
		s.respondFailure(w, "ping", err)
		return
	}
	s.respondJSON(w, http.StatusOK, pingResponse{
		Count:     result.Count,
		LatencyMS: result.Latency.Milliseconds(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var intent domain.SearchIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	intent = intent.Normalized()
	s.logger.Debug("search request", zap.String("query", intent.Query), zap.Int("page", intent.Page))

	page, err := s.ports.Search.Search(r.Context(), intent)
	if err != nil {
		s.respondFailure(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if s.ports.Items == nil {
		s.respondError(w, http.StatusNotImplemented, "item lookup not enabled")
		return
	}
	num := chi.URLParam(r, "num")
	item, err := s.ports.Items.Get(r.Context(), num)
	if err != nil {
		s.respondFailure(w, "get item", err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleStartExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Format == "" {
		req.Format = string(domain.ExportCSV)
	}
	format, err := domain.ParseExportFormat(req.Format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", req.Format))
		return
	}

	job, err := s.ports.Export.Start(r.Context(), req.Intent.Normalized(), format)
	if err != nil {
		s.respondFailure(w, "start export", err)
		return
	}
	s.logger.Info("export started", zap.String("id", job.ID), zap.String("format", string(format)))
	s.respondJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleCurrentExport(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.ports.Export.Current())
}

func (s *Server) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.ports.Export.History(r.Context(), limit)
	if err != nil {
		s.respondFailure(w, "export history", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"exports": records})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	artifact, ok := s.ports.Downloads.Get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "export not found")
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// respondFailure maps a service error to a status and logs server-side failures.
func (s *Server) respondFailure(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

// statusFor returns the HTTP status of a service error.
func statusFor(err error) int {
	var (
		backendErr   *domain.BackendError
		transportErr *domain.TransportError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &backendErr), errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
