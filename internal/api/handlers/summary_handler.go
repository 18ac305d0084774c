package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/models"
)

type SummaryHandler struct {
	ingestor   ingestion_engine.Ingestor
	summarizer core.Summarizer
	logger     *slog.Logger
}

func NewSummaryHandler(ing ingestion_engine.Ingestor, s core.Summarizer, logger *slog.Logger) *SummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryHandler{ingestor: ing, summarizer: s, logger: logger}
}

// Summarize returns a quick summary of a task's extracted text.
func (h *SummaryHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	task, ok := h.ingestor.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Extraction.Status != models.StatusSucceeded || task.Extraction.Text == "" {
		writeError(w, http.StatusConflict, "task has no extracted text")
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), task.Extraction.Text, task.Name)
	if err != nil {
		h.logger.Warn("summary failed", "task_id", task.ID, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"task_id": task.ID, "summary": summary})
}
