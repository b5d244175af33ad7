package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/certgen/internal/domain"
	"github.com/aidar/certgen/internal/roster"
	"github.com/aidar/certgen/internal/service"
)

const defaultRunsLimit = 20

// RunHandler обрабатывает эндпоинты запусков генерации
type RunHandler struct {
	certService *service.CertificateService
	resultsDir  string
	maxUpload   int64
	logger      *slog.Logger
}

// NewRunHandler создает новый RunHandler
func NewRunHandler(certService *service.CertificateService, resultsDir string, maxUpload int64, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		certService: certService,
		resultsDir:  resultsDir,
		maxUpload:   maxUpload,
		logger:      logger,
	}
}

// CreateRun обрабатывает POST /runs (multipart: file, lines, id_mode)
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "file is required")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to read uploaded file")
		return
	}

	lines, err := domain.ParseLines(r.FormValue("lines"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	idMode := false
	if v := r.FormValue("id_mode"); v != "" {
		if idMode, err = strconv.ParseBool(v); err != nil {
			RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "id_mode must be a boolean")
			return
		}
	}

	src, err := roster.OpenReader(header.Filename, buf.Bytes(), roster.DetectFormat(header.Filename), idMode)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	h.logger.Info("Roster uploaded", "file", header.Filename, "size", header.Size, "operator", operatorFrom(r))

	run, err := h.certService.Generate(r.Context(), service.GenerateRequest{
		Source:     src,
		ResultsDir: h.resultsDir,
		Lines:      lines,
		IDMode:     idMode,
		PerRunDir:  true,
	})
	if err != nil {
		HandleError(w, r, err)
		return
	}

	details, err := h.certService.GetRun(r.Context(), run.ID)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, details)
}

// ListRuns обрабатывает GET /runs?limit=...
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.certService.ListRuns(r.Context(), limit)
	if err != nil {
		HandleError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*domain.Run{}
	}

	RespondWithJSON(w, r, http.StatusOK, map[string]any{"runs": runs})
}

// GetRun обрабатывает GET /runs/{runID}
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	details, err := h.certService.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, details)
}

// GetFile обрабатывает GET /runs/{runID}/files/{fileName}
func (h *RunHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	path, err := h.certService.ResultPath(r.Context(), chi.URLParam(r, "runID"), chi.URLParam(r, "fileName"))
	if err != nil {
		if !errors.Is(err, domain.ErrFileNotFound) && !errors.Is(err, domain.ErrRunNotFound) {
			h.logger.Error("Failed to resolve result file", "error", err)
		}
		HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}
