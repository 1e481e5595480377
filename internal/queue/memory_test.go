package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oks-citadel/applyflow/internal/core"
)

func newTestTask(tier core.PriorityTier) *core.SubmissionTask {
	return core.NewSubmissionTask("profile-1", "posting-1", "https://boards.greenhouse.io/acme/jobs/1", tier)
}

func TestMemoryQueueLeaseInvisibility(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	task := newTestTask(core.TierStandard)
	require.NoError(t, q.Enqueue(ctx, task))

	leased, err := q.Lease(ctx, "worker-0", 5*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)
	assert.Equal(t, task.TaskID, leased.TaskID)
	assert.Equal(t, core.StatusInFlight, leased.Status)

	// The leased task must be invisible to every other worker.
	second, err := q.Lease(ctx, "worker-1", 5*time.Minute)
	require.NoError(t, err)
	assert.Nil(t, second)
}

func TestMemoryQueueVisibilityExpiryKeepsAttemptCount(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10).(*memoryQueue)

	task := newTestTask(core.TierStandard)

	// Freeze the clock after the task is stamped so its NotBefore is not
	// nanoseconds ahead of the frozen time.
	current := time.Now()
	q.now = func() time.Time { return current }

	require.NoError(t, q.Enqueue(ctx, task))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)

	// Before expiry the task stays invisible.
	current = current.Add(30 * time.Second)
	blocked, err := q.Lease(ctx, "worker-1", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, blocked)

	// After expiry another worker reclaims it with the attempt count intact.
	current = current.Add(31 * time.Second)
	reclaimed, err := q.Lease(ctx, "worker-1", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, reclaimed)
	assert.Equal(t, task.TaskID, reclaimed.TaskID)
	assert.Equal(t, 0, reclaimed.AttemptCount)
}

func TestMemoryQueueFIFOWithinTier(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	first := newTestTask(core.TierStandard)
	second := newTestTask(core.TierStandard)
	second.FirstEnqueuedAt = first.FirstEnqueuedAt.Add(time.Second)

	require.NoError(t, q.Enqueue(ctx, second))
	require.NoError(t, q.Enqueue(ctx, first))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)
	assert.Equal(t, first.TaskID, leased.TaskID, "oldest task in the tier must go first")
}

func TestMemoryQueueStrictPriorityAcrossTiers(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	batch := newTestTask(core.TierBatch)
	express := newTestTask(core.TierExpress)
	require.NoError(t, q.Enqueue(ctx, batch))
	require.NoError(t, q.Enqueue(ctx, express))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)
	assert.Equal(t, express.TaskID, leased.TaskID)
}

func TestMemoryQueueStarvationProtection(t *testing.T) {
	ctx := context.Background()
	bound := 3
	q := NewMemoryQueue(bound)

	batch := newTestTask(core.TierBatch)
	require.NoError(t, q.Enqueue(ctx, batch))
	for range bound + 1 {
		require.NoError(t, q.Enqueue(ctx, newTestTask(core.TierExpress)))
	}

	var servedBatch bool
	for i := range bound + 1 {
		leased, err := q.Lease(ctx, "worker-0", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, leased)
		if leased.PriorityTier == core.TierBatch {
			servedBatch = true
			assert.Equal(t, bound, i, "the waiting batch task should be forced after the bound is hit")
		}
	}
	assert.True(t, servedBatch, "batch task must not starve behind a steady express stream")
}

func TestMemoryQueueNackIncrementsAttemptAndDelays(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10).(*memoryQueue)

	task := newTestTask(core.TierStandard)

	// Freeze the clock after the task is stamped so its NotBefore is not
	// nanoseconds ahead of the frozen time.
	current := time.Now()
	q.now = func() time.Time { return current }

	require.NoError(t, q.Enqueue(ctx, task))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)

	require.NoError(t, q.Nack(ctx, leased, current.Add(time.Minute)))

	// Not eligible until the backoff delay passes.
	blocked, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	assert.Nil(t, blocked)

	current = current.Add(61 * time.Second)
	again, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, 1, again.AttemptCount)
}

func TestMemoryQueueNackPersistsAmbiguityCount(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10).(*memoryQueue)

	task := newTestTask(core.TierStandard)

	// Freeze the clock after the task is stamped so its NotBefore is not
	// nanoseconds ahead of the frozen time.
	current := time.Now()
	q.now = func() time.Time { return current }

	require.NoError(t, q.Enqueue(ctx, task))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)

	// Nack with a detached copy so the count must round-trip through the
	// queue, not through a shared pointer.
	updated := *leased
	updated.AmbiguityCount = 2
	require.NoError(t, q.Nack(ctx, &updated, current))

	again, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, 2, again.AmbiguityCount)
	assert.Equal(t, 1, again.AttemptCount)
}

func TestMemoryQueueConcurrentLeaseClaimsEachTaskOnce(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	const taskCount = 50
	for i := 0; i < taskCount; i++ {
		require.NoError(t, q.Enqueue(ctx, newTestTask(core.TierStandard)))
	}

	var mu sync.Mutex
	seen := make(map[uuid.UUID]int)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(workerID string) {
			defer wg.Done()
			for {
				task, err := q.Lease(ctx, workerID, 5*time.Minute)
				require.NoError(t, err)
				if task == nil {
					return
				}
				mu.Lock()
				seen[task.TaskID]++
				mu.Unlock()
			}
		}(fmt.Sprintf("worker-%d", w))
	}
	wg.Wait()

	assert.Len(t, seen, taskCount)
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %s leased more than once while in flight", id)
	}
}

func TestMemoryQueueAckRemovesTask(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	task := newTestTask(core.TierStandard)
	require.NoError(t, q.Enqueue(ctx, task))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)

	require.NoError(t, q.Ack(ctx, leased.TaskID))
	assert.ErrorIs(t, q.Ack(ctx, leased.TaskID), ErrTaskNotFound)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.InFlight)
	assert.Empty(t, stats.PendingByTier)
}

func TestMemoryQueueDeadLetterLifecycle(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	task := newTestTask(core.TierStandard)
	task.AttemptCount = 4
	require.NoError(t, q.Enqueue(ctx, task))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)
	leased.AttemptCount = 5

	require.NoError(t, q.DeadLetter(ctx, leased.TaskID, "retries_exhausted"))

	entries, err := q.ListDeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "retries_exhausted", entries[0].Reason)
	assert.Equal(t, core.StatusDeadLettered, entries[0].Task.Status)

	// Requeue resets the attempt budget and makes the task leasable again.
	require.NoError(t, q.RequeueDeadLetter(ctx, task.TaskID))
	entries, err = q.ListDeadLetters(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	requeued, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, requeued)
	assert.Equal(t, task.TaskID, requeued.TaskID)
	assert.Zero(t, requeued.AttemptCount)

	// Purge removes an entry for good.
	require.NoError(t, q.DeadLetter(ctx, task.TaskID, "retries_exhausted"))
	require.NoError(t, q.PurgeDeadLetter(ctx, task.TaskID))
	assert.ErrorIs(t, q.RequeueDeadLetter(ctx, task.TaskID), ErrTaskNotFound)
}

func TestMemoryQueueStats(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(10)

	require.NoError(t, q.Enqueue(ctx, newTestTask(core.TierExpress)))
	require.NoError(t, q.Enqueue(ctx, newTestTask(core.TierStandard)))
	require.NoError(t, q.Enqueue(ctx, newTestTask(core.TierStandard)))

	leased, err := q.Lease(ctx, "worker-0", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, leased)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InFlight)
	assert.Equal(t, 2, stats.PendingByTier[core.TierStandard])
	assert.Zero(t, stats.PendingByTier[core.TierExpress])
}
