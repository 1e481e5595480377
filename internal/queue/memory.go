package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oks-citadel/applyflow/internal/core"
)

// memoryQueue is the in-process Queue backend used by tests and single-node
// development. It implements the same lease semantics as the Postgres backend
// without a database: invisibility windows, crashed-worker reclamation, and
// weighted round-robin starvation protection.
type memoryQueue struct {
	mu              sync.Mutex
	pending         map[core.PriorityTier][]*core.SubmissionTask
	inflight        map[uuid.UUID]*memLease
	dead            []DeadLetter
	starvationBound int
	highStreak      int
	now             func() time.Time
}

type memLease struct {
	task     *core.SubmissionTask
	workerID string
	expires  time.Time
}

// NewMemoryQueue creates an in-memory queue. starvationBound is the number of
// consecutive higher-tier leases allowed while lower-tier work waits; values
// below 1 default to 10.
func NewMemoryQueue(starvationBound int) Queue {
	if starvationBound < 1 {
		starvationBound = 10
	}
	return &memoryQueue{
		pending:         make(map[core.PriorityTier][]*core.SubmissionTask),
		inflight:        make(map[uuid.UUID]*memLease),
		starvationBound: starvationBound,
		now:             time.Now,
	}
}

func (q *memoryQueue) Enqueue(_ context.Context, task *core.SubmissionTask) error {
	if err := task.Validate(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	task.Status = core.StatusPending
	q.insert(task)
	return nil
}

// insert places a task into its tier keeping FIFO order by FirstEnqueuedAt.
// Callers must hold q.mu.
func (q *memoryQueue) insert(task *core.SubmissionTask) {
	tier := q.pending[task.PriorityTier]
	idx := sort.Search(len(tier), func(i int) bool {
		return tier[i].FirstEnqueuedAt.After(task.FirstEnqueuedAt)
	})
	tier = append(tier, nil)
	copy(tier[idx+1:], tier[idx:])
	tier[idx] = task
	q.pending[task.PriorityTier] = tier
}

func (q *memoryQueue) Lease(_ context.Context, workerID string, visibility time.Duration) (*core.SubmissionTask, error) {
	if visibility <= 0 {
		visibility = 5 * time.Minute
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	q.reclaimExpired(now)

	eligible := q.eligibleTiers(now)
	if len(eligible) == 0 {
		return nil, nil
	}

	// Strict priority, except that a long streak of higher-tier leases while
	// lower-tier work waits forces one lower-tier task to the front.
	chosen := eligible[0]
	if len(eligible) > 1 {
		if q.highStreak >= q.starvationBound {
			chosen = eligible[1]
			q.highStreak = 0
		} else {
			q.highStreak++
		}
	}
	if chosen == eligible[0] && len(eligible) == 1 {
		q.highStreak = 0
	}

	task := q.popEligible(chosen, now)
	if task == nil {
		return nil, nil
	}
	task.Status = core.StatusInFlight
	q.inflight[task.TaskID] = &memLease{task: task, workerID: workerID, expires: now.Add(visibility)}
	return task, nil
}

// reclaimExpired returns tasks with lapsed leases to their tiers with
// AttemptCount unchanged. Callers must hold q.mu.
func (q *memoryQueue) reclaimExpired(now time.Time) {
	for id, l := range q.inflight {
		if l.expires.After(now) {
			continue
		}
		l.task.Status = core.StatusPending
		q.insert(l.task)
		delete(q.inflight, id)
	}
}

// eligibleTiers returns tiers holding at least one task whose NotBefore has
// passed, highest priority first. Callers must hold q.mu.
func (q *memoryQueue) eligibleTiers(now time.Time) []core.PriorityTier {
	var tiers []core.PriorityTier
	for tier, tasks := range q.pending {
		for _, t := range tasks {
			if !t.NotBefore.After(now) {
				tiers = append(tiers, tier)
				break
			}
		}
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

// popEligible removes and returns the oldest eligible task of a tier.
// Callers must hold q.mu.
func (q *memoryQueue) popEligible(tier core.PriorityTier, now time.Time) *core.SubmissionTask {
	tasks := q.pending[tier]
	for i, t := range tasks {
		if t.NotBefore.After(now) {
			continue
		}
		q.pending[tier] = append(tasks[:i], tasks[i+1:]...)
		return t
	}
	return nil
}

func (q *memoryQueue) Ack(_ context.Context, taskID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.inflight[taskID]; !ok {
		return ErrTaskNotFound
	}
	delete(q.inflight, taskID)
	return nil
}

func (q *memoryQueue) Nack(_ context.Context, task *core.SubmissionTask, notBefore time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	l, ok := q.inflight[task.TaskID]
	if !ok {
		return ErrTaskNotFound
	}
	delete(q.inflight, task.TaskID)
	l.task.AttemptCount++
	l.task.AmbiguityCount = task.AmbiguityCount
	l.task.Status = core.StatusPending
	l.task.NotBefore = notBefore
	q.insert(l.task)
	return nil
}

func (q *memoryQueue) DeadLetter(_ context.Context, taskID uuid.UUID, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	l, ok := q.inflight[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	delete(q.inflight, taskID)
	l.task.Status = core.StatusDeadLettered
	q.dead = append(q.dead, DeadLetter{Task: l.task, Reason: reason, DeadLetterAt: q.now()})
	return nil
}

func (q *memoryQueue) Stats(_ context.Context) (Stats, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := Stats{
		PendingByTier: make(map[core.PriorityTier]int),
		InFlight:      len(q.inflight),
		DeadLettered:  len(q.dead),
	}
	for tier, tasks := range q.pending {
		if len(tasks) > 0 {
			s.PendingByTier[tier] = len(tasks)
		}
	}
	return s, nil
}

func (q *memoryQueue) ListDeadLetters(_ context.Context, limit int) ([]DeadLetter, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if limit <= 0 || limit > len(q.dead) {
		limit = len(q.dead)
	}
	out := make([]DeadLetter, limit)
	copy(out, q.dead[:limit])
	return out, nil
}

func (q *memoryQueue) RequeueDeadLetter(_ context.Context, taskID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, d := range q.dead {
		if d.Task.TaskID != taskID {
			continue
		}
		q.dead = append(q.dead[:i], q.dead[i+1:]...)
		d.Task.Status = core.StatusPending
		d.Task.AttemptCount = 0
		d.Task.NotBefore = q.now()
		q.insert(d.Task)
		return nil
	}
	return ErrTaskNotFound
}

func (q *memoryQueue) PurgeDeadLetter(_ context.Context, taskID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, d := range q.dead {
		if d.Task.TaskID == taskID {
			q.dead = append(q.dead[:i], q.dead[i+1:]...)
			return nil
		}
	}
	return ErrTaskNotFound
}
