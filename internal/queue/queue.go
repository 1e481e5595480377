// Package queue provides the durable, priority-aware work queue that owns
// every submission task between enqueue and finalization. All cross-worker
// coordination happens through the lease/ack/nack contract defined here.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/oks-citadel/applyflow/internal/core"
)

// ErrTaskNotFound is returned when an ack, nack, or dead-letter operation
// names a task the queue does not hold.
var ErrTaskNotFound = errors.New("task not found in queue")

// Stats summarizes queue state for the operational surface.
type Stats struct {
	PendingByTier map[core.PriorityTier]int `json:"pending_by_tier"`
	InFlight      int                       `json:"in_flight"`
	DeadLettered  int                       `json:"dead_lettered"`
}

// DeadLetter is a task quarantined after exhausting its retry budget,
// held until an operator requeues or purges it.
type DeadLetter struct {
	Task         *core.SubmissionTask `json:"task"`
	Reason       string               `json:"reason"`
	DeadLetterAt time.Time            `json:"dead_letter_at"`
}

// Queue is the engine's work queue. Implementations must guarantee that a
// leased task is invisible to other workers until its visibility timeout
// expires, and that expiry restores visibility with AttemptCount unchanged
// (crashed-worker recovery is not a business retry).
type Queue interface {
	// Enqueue accepts a new task. The task's NotBefore gates eligibility.
	Enqueue(ctx context.Context, task *core.SubmissionTask) error

	// Lease atomically claims the next eligible task for workerID. Within a
	// tier tasks are served FIFO by FirstEnqueuedAt; across tiers strict
	// priority applies, except that after a configured number of consecutive
	// higher-tier leases one lower-tier task is forced to the front.
	// Lease returns (nil, nil) when nothing is eligible.
	Lease(ctx context.Context, workerID string, visibility time.Duration) (*core.SubmissionTask, error)

	// Ack removes a leased task from the queue.
	Ack(ctx context.Context, taskID uuid.UUID) error

	// Nack returns a leased task to the queue as a business retry: the
	// attempt count increments and the task stays invisible until notBefore.
	// Counters mutated during the attempt (AmbiguityCount) are persisted
	// from the passed task, so a later lease sees them regardless of backend.
	Nack(ctx context.Context, task *core.SubmissionTask, notBefore time.Time) error

	// DeadLetter quarantines a task for operator intervention.
	DeadLetter(ctx context.Context, taskID uuid.UUID, reason string) error

	// Stats reports queue depth per tier, in-flight count, and dead-letter count.
	Stats(ctx context.Context) (Stats, error)

	// ListDeadLetters returns up to limit quarantined tasks.
	ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error)

	// RequeueDeadLetter returns a quarantined task to the pending queue with
	// its attempt count reset.
	RequeueDeadLetter(ctx context.Context, taskID uuid.UUID) error

	// PurgeDeadLetter permanently discards a quarantined task.
	PurgeDeadLetter(ctx context.Context, taskID uuid.UUID) error
}
