package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"reqtrack/backend/internal/extract"
	"reqtrack/backend/internal/job"
)

// Ingestor is the service surface the handler depends on.
type Ingestor interface {
	IngestDocument(ctx context.Context, req DocumentRequest) (*extract.Result, error)
}

type Handler struct {
	service        Ingestor
	reader         ContentReader
	maxUploadBytes int64
}

func NewHandler(service Ingestor, reader ContentReader, maxUploadBytes int64) *Handler {
	return &Handler{service: service, reader: reader, maxUploadBytes: maxUploadBytes}
}

// Create ingests an already-decoded document sent as JSON.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	if req.ProjectName == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "project_name is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "content is required", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "text"
	}

	h.ingest(ctx, w, req)
}

// Upload ingests a multipart file upload. Only textual formats are accepted
// here; binary formats are decoded by an external converter before reaching
// this endpoint.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "File too large", http.StatusBadRequest)
		return
	}

	projectName := r.FormValue("project_name")
	if projectName == "" {
		h.writeError(ctx, w, "VALIDATION_ERROR", "project_name is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", "Unable to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := h.reader.ReadText(header.Filename, file)
	if err != nil {
		h.writeError(ctx, w, "BAD_REQUEST", err.Error(), http.StatusBadRequest)
		return
	}

	h.ingest(ctx, w, DocumentRequest{
		ProjectName: projectName,
		FileName:    header.Filename,
		ContentType: "upload",
		Content:     content,
	})
}

func (h *Handler) ingest(ctx context.Context, w http.ResponseWriter, req DocumentRequest) {
	result, err := h.service.IngestDocument(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrEmptyDocument):
			h.writeError(ctx, w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		case errors.Is(err, job.ErrJobTimeout):
			h.writeError(ctx, w, "TIMEOUT", err.Error(), http.StatusGatewayTimeout)
		case errors.Is(err, job.ErrWorkerTerminated):
			h.writeError(ctx, w, "WORKER_FAILED", err.Error(), http.StatusBadGateway)
		default:
			slog.ErrorContext(ctx, "ingestion failed", "error", err, "file", req.FileName)
			h.writeError(ctx, w, "EXTRACTION_FAILED", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": result}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(ctx, "failed to encode error response", "error", err)
	}
}
