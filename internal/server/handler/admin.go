package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oks-citadel/applyflow/internal/queue"
)

// AdminHandler exposes queue inspection and dead-letter management.
type AdminHandler struct {
	queue  queue.Queue
	logger *slog.Logger
}

// NewAdminHandler creates a handler over the given queue.
func NewAdminHandler(q queue.Queue, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{queue: q, logger: logger}
}

// QueueStats handles GET /api/v1/queue/stats.
func (h *AdminHandler) QueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to read queue stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read queue stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListDeadLetters handles GET /api/v1/deadletters.
func (h *AdminHandler) ListDeadLetters(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.queue.ListDeadLetters(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list dead letters", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list dead letters")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dead_letters": entries})
}

// RequeueDeadLetter handles POST /api/v1/deadletters/{taskID}/requeue.
func (h *AdminHandler) RequeueDeadLetter(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}
	if err := h.queue.RequeueDeadLetter(r.Context(), taskID); err != nil {
		h.deadLetterError(w, "requeue", taskID, err)
		return
	}
	h.logger.Info("dead-lettered task requeued", "task_id", taskID)
	writeJSON(w, http.StatusOK, map[string]any{"task_id": taskID, "status": "requeued"})
}

// PurgeDeadLetter handles DELETE /api/v1/deadletters/{taskID}.
func (h *AdminHandler) PurgeDeadLetter(w http.ResponseWriter, r *http.Request) {
	taskID, ok := h.taskID(w, r)
	if !ok {
		return
	}
	if err := h.queue.PurgeDeadLetter(r.Context(), taskID); err != nil {
		h.deadLetterError(w, "purge", taskID, err)
		return
	}
	h.logger.Info("dead-lettered task purged", "task_id", taskID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminHandler) deadLetterError(w http.ResponseWriter, op string, taskID uuid.UUID, err error) {
	if errors.Is(err, queue.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "dead-lettered task not found")
		return
	}
	h.logger.Error("dead letter operation failed", "op", op, "task_id", taskID, "error", err)
	writeError(w, http.StatusInternalServerError, "dead letter operation failed")
}
