// Package core defines the essential interfaces and data structures that form the
// backbone of the submission engine. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the engine's logic.
package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks a submission task through its lifecycle.
type TaskStatus string

const (
	StatusPending         TaskStatus = "pending"
	StatusInFlight        TaskStatus = "in_flight"
	StatusSucceeded       TaskStatus = "succeeded"
	StatusFailedTerminal  TaskStatus = "failed_terminal"
	StatusFailedRetryable TaskStatus = "failed_retryable"
	StatusDeadLettered    TaskStatus = "dead_lettered"
)

// PriorityTier orders tasks across the queue. Lower values are served first.
type PriorityTier int

const (
	TierExpress  PriorityTier = 0
	TierStandard PriorityTier = 1
	TierBatch    PriorityTier = 2
)

// String returns a human-readable tier name for logs and metrics labels.
func (t PriorityTier) String() string {
	switch t {
	case TierExpress:
		return "express"
	case TierStandard:
		return "standard"
	case TierBatch:
		return "batch"
	default:
		return fmt.Sprintf("tier_%d", int(t))
	}
}

// MarshalText makes tier names appear in JSON map keys and fields.
func (t PriorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name or numeric value.
func (t *PriorityTier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "express":
		*t = TierExpress
	case "standard":
		*t = TierStandard
	case "batch":
		*t = TierBatch
	default:
		n, err := strconv.Atoi(string(text))
		if err != nil {
			return fmt.Errorf("unknown priority tier %q", text)
		}
		*t = PriorityTier(n)
	}
	return nil
}

// SubmissionTask is one unit of work: apply one candidate to one job posting.
// The queue owns the record; a worker owns the execution only for the duration
// of its lease. Status transitions happen exclusively through the retry
// controller's classification of an execution outcome.
type SubmissionTask struct {
	TaskID              uuid.UUID    `json:"task_id" db:"task_id"`
	CandidateProfileRef string       `json:"candidate_profile_ref" db:"candidate_profile_ref"`
	JobPostingRef       string       `json:"job_posting_ref" db:"job_posting_ref"`
	TargetURL           string       `json:"target_url" db:"target_url"`
	PriorityTier        PriorityTier `json:"priority_tier" db:"priority_tier"`
	AttemptCount        int          `json:"attempt_count" db:"attempt_count"`
	AmbiguityCount      int          `json:"ambiguity_count" db:"ambiguity_count"`
	Status              TaskStatus   `json:"status" db:"status"`
	FirstEnqueuedAt     time.Time    `json:"first_enqueued_at" db:"first_enqueued_at"`
	NotBefore           time.Time    `json:"not_before" db:"not_before"`
}

// NewSubmissionTask builds a pending task for the given candidate and posting.
func NewSubmissionTask(profileRef, postingRef, targetURL string, tier PriorityTier) *SubmissionTask {
	now := time.Now().UTC()
	return &SubmissionTask{
		TaskID:              uuid.New(),
		CandidateProfileRef: profileRef,
		JobPostingRef:       postingRef,
		TargetURL:           targetURL,
		PriorityTier:        tier,
		Status:              StatusPending,
		FirstEnqueuedAt:     now,
		NotBefore:           now,
	}
}

// Validate checks that a task carries everything a worker needs to execute it.
func (t *SubmissionTask) Validate() error {
	if t.TaskID == uuid.Nil {
		return fmt.Errorf("task has no ID")
	}
	if t.CandidateProfileRef == "" {
		return fmt.Errorf("task %s has no candidate profile reference", t.TaskID)
	}
	if t.TargetURL == "" {
		return fmt.Errorf("task %s has no target URL", t.TaskID)
	}
	return nil
}

// ReasonCode explains a terminal disposition in a form a human can act on.
type ReasonCode string

const (
	ReasonSubmitted                ReasonCode = "submitted"
	ReasonPostingClosed            ReasonCode = "posting_closed"
	ReasonDuplicateApplication     ReasonCode = "duplicate_application"
	ReasonMissingRequiredAttribute ReasonCode = "missing_required_attribute"
	ReasonAmbiguousMapping         ReasonCode = "ambiguous_field_mapping"
	ReasonAmbiguousOutcome         ReasonCode = "ambiguous_outcome"
	ReasonInfrastructure           ReasonCode = "infrastructure_error"
	ReasonTimeout                  ReasonCode = "timeout"
	ReasonWorkerFault              ReasonCode = "worker_fault"
	ReasonCaptchaFailed            ReasonCode = "captcha_failed"
	ReasonRetriesExhausted         ReasonCode = "retries_exhausted"
)

// SubmissionOutcome is the final word on one execution attempt, and, once a
// task finalizes, on the task itself. EvidenceRef points at a verification
// artifact owned by the automation driver, captured on every exit path.
type SubmissionOutcome struct {
	TaskID       uuid.UUID  `json:"task_id" db:"task_id"`
	Status       TaskStatus `json:"status" db:"status"`
	ReasonCode   ReasonCode `json:"reason_code" db:"reason_code"`
	Detail       string     `json:"detail,omitempty" db:"detail"`
	EvidenceRef  string     `json:"evidence_ref,omitempty" db:"evidence_ref"`
	AdapterKind  string     `json:"adapter_kind" db:"adapter_kind"`
	AttemptCount int        `json:"attempt_count" db:"attempt_count"`
	CompletedAt  time.Time  `json:"completed_at" db:"completed_at"`
}

// Terminal reports whether the outcome finalizes the task rather than
// sending it back through the retry controller for re-enqueueing.
func (o *SubmissionOutcome) Terminal() bool {
	return o.Status == StatusSucceeded || o.Status == StatusFailedTerminal
}

// OutcomeSink receives every finalized outcome. Delivery is at-least-once;
// consumers must tolerate duplicates.
type OutcomeSink interface {
	Publish(ctx context.Context, outcome *SubmissionOutcome) error
}
