// Package storage persists submission outcomes, one row per attempt.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/oks-citadel/applyflow/internal/core"
)

// OutcomeStore defines the interface for outcome persistence.
type OutcomeStore interface {
	SaveOutcome(ctx context.Context, outcome *core.SubmissionOutcome) error
	ListOutcomesForTask(ctx context.Context, taskID uuid.UUID) ([]core.SubmissionOutcome, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Postgres-backed OutcomeStore.
func NewStore(db *sqlx.DB) OutcomeStore {
	return &postgresStore{db: db}
}

// SaveOutcome appends one attempt outcome. Outcomes are append-only; the
// full attempt history of a task stays queryable for audit and disputes.
func (s *postgresStore) SaveOutcome(ctx context.Context, outcome *core.SubmissionOutcome) error {
	query := `INSERT INTO submission_outcomes
		(task_id, status, reason_code, detail, evidence_ref, adapter_kind, attempt_count, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		outcome.TaskID, outcome.Status, outcome.ReasonCode, outcome.Detail,
		outcome.EvidenceRef, outcome.AdapterKind, outcome.AttemptCount, outcome.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to save outcome for task %s: %w", outcome.TaskID, err)
	}
	return nil
}

// ListOutcomesForTask retrieves a task's attempt history, oldest first.
func (s *postgresStore) ListOutcomesForTask(ctx context.Context, taskID uuid.UUID) ([]core.SubmissionOutcome, error) {
	query := `
		SELECT task_id, status, reason_code, detail, evidence_ref, adapter_kind, attempt_count, completed_at
		FROM submission_outcomes
		WHERE task_id = $1
		ORDER BY completed_at ASC`

	var outcomes []core.SubmissionOutcome
	if err := s.db.SelectContext(ctx, &outcomes, query, taskID); err != nil {
		return nil, fmt.Errorf("failed to list outcomes for task %s: %w", taskID, err)
	}
	return outcomes, nil
}

// memoryStore is an in-process OutcomeStore for tests and memory-queue runs.
type memoryStore struct {
	mu       sync.Mutex
	outcomes []core.SubmissionOutcome
}

// NewMemoryStore creates an OutcomeStore with no persistence.
func NewMemoryStore() OutcomeStore {
	return &memoryStore{}
}

func (s *memoryStore) SaveOutcome(_ context.Context, outcome *core.SubmissionOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, *outcome)
	return nil
}

func (s *memoryStore) ListOutcomesForTask(_ context.Context, taskID uuid.UUID) ([]core.SubmissionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.SubmissionOutcome
	for _, o := range s.outcomes {
		if o.TaskID == taskID {
			out = append(out, o)
		}
	}
	return out, nil
}
