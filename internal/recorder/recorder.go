// Package recorder persists the final disposition of every task and emits it
// to downstream collaborators. It sits downstream of everything: by the time
// an outcome reaches the recorder, the retry controller has already decided
// the task will never run again.
package recorder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/observability"
	"github.com/oks-citadel/applyflow/internal/storage"
)

// Recorder writes finalized outcomes to the store and publishes them to the
// outcome sink. Publication is at-least-once: a sink failure is logged and
// the outcome stays recorded, it is never re-executed to re-emit.
type Recorder struct {
	store   storage.OutcomeStore
	sink    core.OutcomeSink
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a recorder. sink may be nil when no downstream consumer is
// configured.
func New(store storage.OutcomeStore, sink core.OutcomeSink, metrics *observability.Metrics, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, sink: sink, metrics: metrics, logger: logger}
}

// RecordAttempt persists the outcome of an attempt that is being retried.
// Attempt rows keep the task's history queryable; they are store-only, the
// sink sees a task once, when it settles.
func (r *Recorder) RecordAttempt(ctx context.Context, outcome *core.SubmissionOutcome) error {
	if err := r.store.SaveOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("failed to record attempt outcome: %w", err)
	}
	r.logger.Debug("attempt recorded",
		"task_id", outcome.TaskID,
		"reason", outcome.ReasonCode,
		"attempt", outcome.AttemptCount,
	)
	return nil
}

// Record persists one finalized outcome and emits it downstream.
func (r *Recorder) Record(ctx context.Context, outcome *core.SubmissionOutcome) error {
	if err := r.store.SaveOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	if r.metrics != nil {
		r.metrics.Outcomes.WithLabelValues(string(outcome.Status), string(outcome.ReasonCode)).Inc()
	}

	r.logger.Info("task finalized",
		"task_id", outcome.TaskID,
		"status", outcome.Status,
		"reason", outcome.ReasonCode,
		"attempts", outcome.AttemptCount,
		"evidence", outcome.EvidenceRef,
	)

	if r.sink == nil {
		return nil
	}
	if err := r.sink.Publish(ctx, outcome); err != nil {
		// At-least-once, not exactly-once: the outcome is durably recorded,
		// consumers reconcile from the store when an event goes missing.
		r.logger.Error("failed to publish outcome event", "task_id", outcome.TaskID, "error", err)
	}
	return nil
}
