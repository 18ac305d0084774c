package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/core/validation"
	"github.com/markdave123-py/Lumen/internal/models"
)

// multipartMemory is how much of a batch ParseMultipartForm keeps in memory before spilling to disk.
const multipartMemory = 32 << 20

type DocumentHandler struct {
	ingestor ingestion_engine.Ingestor
	logger   *slog.Logger
}

func NewDocumentHandler(ing ingestion_engine.Ingestor, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{ingestor: ing, logger: logger}
}

type tasksResponse struct {
	Tasks []models.FileTask `json:"tasks"`
}

// UploadFiles accepts a multipart batch (field "files", repeatable) and
// registers one task per file. Rejected files still get a task.
func (h *DocumentHandler) UploadFiles(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload batch too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, `no files in field "files"`)
		return
	}

	raw := make([]models.RawFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readPart(fh)
		if err != nil {
			h.logger.Warn("could not read uploaded file", "file", fh.Filename, "error", err)
			writeError(w, http.StatusBadRequest, fmt.Sprintf("could not read %s", fh.Filename))
			return
		}
		raw = append(raw, f)
	}

	tasks := h.ingestor.Submit(r.Context(), raw)
	writeJSON(w, http.StatusAccepted, tasksResponse{Tasks: tasks})
}

// readPart turns one multipart file into a RawFile. Bytes are only read for
// files within the size limit; oversized files are rejected by validation anyway.
func readPart(fh *multipart.FileHeader) (models.RawFile, error) {
	name := filepath.Base(fh.Filename)
	f := models.RawFile{
		Name:      name,
		MediaType: partMediaType(fh),
		SizeBytes: fh.Size,
	}
	if fh.Size > validation.MaxFileSizeBytes {
		return f, nil
	}

	file, err := fh.Open()
	if err != nil {
		return f, err
	}
	defer file.Close()

	f.Bytes, err = io.ReadAll(file)
	return f, err
}

func partMediaType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(fh.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (h *DocumentHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tasksResponse{Tasks: h.ingestor.Snapshot()})
}

func (h *DocumentHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ingestor.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *DocumentHandler) DiscardTask(w http.ResponseWriter, r *http.Request) {
	if !h.ingestor.Discard(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ingestor.Get(chi.URLParam(r, "id"))
	if !ok || !task.HasPreview() {
		writeError(w, http.StatusNotFound, "preview not found")
		return
	}
	w.Header().Set("Content-Type", task.PreviewType)
	w.Header().Set("Content-Length", strconv.Itoa(len(task.Preview)))
	_, _ = w.Write(task.Preview)
}
