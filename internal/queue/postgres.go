package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/oks-citadel/applyflow/internal/core"
)

// postgresQueue is the durable Queue backend. Leasing uses
// SELECT ... FOR UPDATE SKIP LOCKED so concurrent workers never claim the
// same task, and lease expiry is a plain timestamp comparison so a crashed
// worker's task becomes visible again without coordination.
type postgresQueue struct {
	db              *sqlx.DB
	starvationBound int

	mu         sync.Mutex
	highStreak int
}

// NewPostgresQueue creates a Postgres-backed queue over an existing
// connection pool. Schema management belongs to the db package's migrations.
func NewPostgresQueue(db *sqlx.DB, starvationBound int) Queue {
	if starvationBound < 1 {
		starvationBound = 10
	}
	return &postgresQueue{db: db, starvationBound: starvationBound}
}

func (q *postgresQueue) Enqueue(ctx context.Context, task *core.SubmissionTask) error {
	if err := task.Validate(); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO submission_tasks
			(task_id, candidate_profile_ref, job_posting_ref, target_url,
			 priority_tier, attempt_count, ambiguity_count, status,
			 first_enqueued_at, not_before)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.TaskID, task.CandidateProfileRef, task.JobPostingRef, task.TargetURL,
		task.PriorityTier, task.AttemptCount, task.AmbiguityCount, core.StatusPending,
		task.FirstEnqueuedAt, task.NotBefore)
	if err != nil {
		return fmt.Errorf("failed to enqueue task %s: %w", task.TaskID, err)
	}
	return nil
}

func (q *postgresQueue) Lease(ctx context.Context, workerID string, visibility time.Duration) (*core.SubmissionTask, error) {
	if visibility <= 0 {
		visibility = 5 * time.Minute
	}

	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// Crashed-worker recovery: lapsed leases become visible again with
	// attempt_count unchanged.
	if _, err := tx.ExecContext(ctx, `
		UPDATE submission_tasks
		SET status = $1, leased_by = NULL, lease_expires_at = NULL
		WHERE status = $2 AND lease_expires_at <= NOW()`,
		core.StatusPending, core.StatusInFlight); err != nil {
		return nil, fmt.Errorf("lease reclamation failed: %w", err)
	}

	tier, ok, err := q.chooseTier(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, tx.Commit()
	}

	var task core.SubmissionTask
	err = tx.QueryRowxContext(ctx, `
		SELECT task_id, candidate_profile_ref, job_posting_ref, target_url,
		       priority_tier, attempt_count, ambiguity_count, status,
		       first_enqueued_at, not_before
		FROM submission_tasks
		WHERE status = $1 AND priority_tier = $2 AND not_before <= NOW()
		ORDER BY first_enqueued_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT 1`,
		core.StatusPending, tier).StructScan(&task)
	if errors.Is(err, sql.ErrNoRows) {
		// Another worker drained the tier between the two statements.
		return nil, tx.Commit()
	}
	if err != nil {
		return nil, fmt.Errorf("lease query failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE submission_tasks
		SET status = $1, leased_by = $2, lease_expires_at = NOW() + ($3 * INTERVAL '1 second')
		WHERE task_id = $4`,
		core.StatusInFlight, workerID, visibility.Seconds(), task.TaskID); err != nil {
		return nil, fmt.Errorf("lease claim failed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	task.Status = core.StatusInFlight
	return &task, nil
}

// chooseTier applies strict priority with starvation protection: after
// starvationBound consecutive leases from a higher tier while lower-tier work
// was eligible, the next lower tier is served once.
func (q *postgresQueue) chooseTier(ctx context.Context, tx *sqlx.Tx) (core.PriorityTier, bool, error) {
	var tiers []core.PriorityTier
	if err := tx.SelectContext(ctx, &tiers, `
		SELECT DISTINCT priority_tier
		FROM submission_tasks
		WHERE status = $1 AND not_before <= NOW()
		ORDER BY priority_tier ASC`,
		core.StatusPending); err != nil {
		return 0, false, fmt.Errorf("tier scan failed: %w", err)
	}
	if len(tiers) == 0 {
		return 0, false, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(tiers) == 1 {
		q.highStreak = 0
		return tiers[0], true, nil
	}
	if q.highStreak >= q.starvationBound {
		q.highStreak = 0
		return tiers[1], true, nil
	}
	q.highStreak++
	return tiers[0], true, nil
}

func (q *postgresQueue) Ack(ctx context.Context, taskID uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM submission_tasks WHERE task_id = $1 AND status = $2`,
		taskID, core.StatusInFlight)
	if err != nil {
		return fmt.Errorf("ack failed for task %s: %w", taskID, err)
	}
	return requireRow(res)
}

func (q *postgresQueue) Nack(ctx context.Context, task *core.SubmissionTask, notBefore time.Time) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE submission_tasks
		SET status = $1, attempt_count = attempt_count + 1, ambiguity_count = $2,
		    not_before = $3, leased_by = NULL, lease_expires_at = NULL
		WHERE task_id = $4 AND status = $5`,
		core.StatusPending, task.AmbiguityCount, notBefore, task.TaskID, core.StatusInFlight)
	if err != nil {
		return fmt.Errorf("nack failed for task %s: %w", task.TaskID, err)
	}
	return requireRow(res)
}

func (q *postgresQueue) DeadLetter(ctx context.Context, taskID uuid.UUID, reason string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE submission_tasks
		SET status = $1, dead_letter_reason = $2, dead_lettered_at = NOW(),
		    leased_by = NULL, lease_expires_at = NULL
		WHERE task_id = $3 AND status = $4`,
		core.StatusDeadLettered, reason, taskID, core.StatusInFlight)
	if err != nil {
		return fmt.Errorf("dead-letter failed for task %s: %w", taskID, err)
	}
	return requireRow(res)
}

func (q *postgresQueue) Stats(ctx context.Context) (Stats, error) {
	s := Stats{PendingByTier: make(map[core.PriorityTier]int)}

	rows, err := q.db.QueryxContext(ctx, `
		SELECT priority_tier, COUNT(*)
		FROM submission_tasks
		WHERE status = $1
		GROUP BY priority_tier`,
		core.StatusPending)
	if err != nil {
		return s, fmt.Errorf("stats query failed: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tier core.PriorityTier
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return s, err
		}
		s.PendingByTier[tier] = count
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	if err := q.db.GetContext(ctx, &s.InFlight, `
		SELECT COUNT(*) FROM submission_tasks WHERE status = $1`,
		core.StatusInFlight); err != nil {
		return s, err
	}
	if err := q.db.GetContext(ctx, &s.DeadLettered, `
		SELECT COUNT(*) FROM submission_tasks WHERE status = $1`,
		core.StatusDeadLettered); err != nil {
		return s, err
	}
	return s, nil
}

func (q *postgresQueue) ListDeadLetters(ctx context.Context, limit int) ([]DeadLetter, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := q.db.QueryxContext(ctx, `
		SELECT task_id, candidate_profile_ref, job_posting_ref, target_url,
		       priority_tier, attempt_count, ambiguity_count, status,
		       first_enqueued_at, not_before, dead_letter_reason, dead_lettered_at
		FROM submission_tasks
		WHERE status = $1
		ORDER BY dead_lettered_at ASC
		LIMIT $2`,
		core.StatusDeadLettered, limit)
	if err != nil {
		return nil, fmt.Errorf("dead-letter listing failed: %w", err)
	}
	defer rows.Close()

	var out []DeadLetter
	for rows.Next() {
		var task core.SubmissionTask
		var reason sql.NullString
		var at sql.NullTime
		if err := rows.Scan(&task.TaskID, &task.CandidateProfileRef, &task.JobPostingRef,
			&task.TargetURL, &task.PriorityTier, &task.AttemptCount, &task.AmbiguityCount,
			&task.Status, &task.FirstEnqueuedAt, &task.NotBefore, &reason, &at); err != nil {
			return nil, err
		}
		out = append(out, DeadLetter{Task: &task, Reason: reason.String, DeadLetterAt: at.Time})
	}
	return out, rows.Err()
}

func (q *postgresQueue) RequeueDeadLetter(ctx context.Context, taskID uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE submission_tasks
		SET status = $1, attempt_count = 0, not_before = NOW(),
		    dead_letter_reason = NULL, dead_lettered_at = NULL
		WHERE task_id = $2 AND status = $3`,
		core.StatusPending, taskID, core.StatusDeadLettered)
	if err != nil {
		return fmt.Errorf("dead-letter requeue failed for task %s: %w", taskID, err)
	}
	return requireRow(res)
}

func (q *postgresQueue) PurgeDeadLetter(ctx context.Context, taskID uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, `
		DELETE FROM submission_tasks WHERE task_id = $1 AND status = $2`,
		taskID, core.StatusDeadLettered)
	if err != nil {
		return fmt.Errorf("dead-letter purge failed for task %s: %w", taskID, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}
