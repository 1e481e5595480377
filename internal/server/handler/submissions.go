// Package handler provides HTTP handlers for the submission engine's API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/observability"
	"github.com/oks-citadel/applyflow/internal/queue"
)

// SubmissionHandler accepts new submission tasks over HTTP.
type SubmissionHandler struct {
	queue   queue.Queue
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewSubmissionHandler creates a handler that enqueues onto the given queue.
func NewSubmissionHandler(q queue.Queue, metrics *observability.Metrics, logger *slog.Logger) *SubmissionHandler {
	return &SubmissionHandler{queue: q, metrics: metrics, logger: logger}
}

type submitRequest struct {
	CandidateProfileRef string `json:"candidate_profile_ref"`
	JobPostingRef       string `json:"job_posting_ref"`
	TargetURL           string `json:"target_url"`
	PriorityTier        *int   `json:"priority_tier"`
}

// Create handles POST /api/v1/submissions.
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tier := core.TierStandard
	if req.PriorityTier != nil {
		tier = core.PriorityTier(*req.PriorityTier)
		if tier < core.TierExpress || tier > core.TierBatch {
			writeError(w, http.StatusBadRequest, "unknown priority tier")
			return
		}
	}
	task := core.NewSubmissionTask(req.CandidateProfileRef, req.JobPostingRef, req.TargetURL, tier)
	if err := task.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.queue.Enqueue(r.Context(), task); err != nil {
		h.logger.Error("failed to enqueue submission task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue task")
		return
	}
	if h.metrics != nil {
		h.metrics.TasksEnqueued.WithLabelValues(tier.String()).Inc()
	}

	h.logger.Info("submission task enqueued",
		"task_id", task.TaskID, "target", task.TargetURL, "tier", tier)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"task_id": task.TaskID,
		"status":  task.Status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
