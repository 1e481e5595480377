package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oks-citadel/applyflow/internal/adapter"
	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/observability"
	"github.com/oks-citadel/applyflow/internal/queue"
	"github.com/oks-citadel/applyflow/internal/recorder"
	"github.com/oks-citadel/applyflow/internal/registry"
)

// PoolConfig sizes and paces the worker pool. PoolSize bounds concurrent
// outbound automation sessions, which is the scarce resource.
type PoolConfig struct {
	PoolSize       int
	Visibility     time.Duration
	PollInterval   time.Duration
	DefaultTimeout time.Duration
}

// DefaultPoolConfig returns the engine's standard pool sizing.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		PoolSize:       4,
		Visibility:     5 * time.Minute,
		PollInterval:   2 * time.Second,
		DefaultTimeout: 90 * time.Second,
	}
}

// Pool is the bounded set of concurrent execution slots. Each slot loops
// lease, resolve, execute under timeout, classify, ack or nack. Slots share
// nothing but the queue; every execution gets a fresh driver session.
type Pool struct {
	cfg      PoolConfig
	queue    queue.Queue
	registry *registry.Registry
	adapters *adapter.Set
	drivers  core.DriverFactory
	profiles core.ProfileService
	retry    *RetryController
	recorder *recorder.Recorder
	metrics  *observability.Metrics
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewPool wires a worker pool. All collaborators are required except metrics.
func NewPool(cfg PoolConfig, q queue.Queue, reg *registry.Registry, adapters *adapter.Set,
	drivers core.DriverFactory, profiles core.ProfileService, retry *RetryController,
	rec *recorder.Recorder, metrics *observability.Metrics, logger *slog.Logger) *Pool {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 1
	}
	if cfg.Visibility <= 0 {
		cfg.Visibility = 5 * time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 90 * time.Second
	}
	return &Pool{
		cfg:      cfg,
		queue:    q,
		registry: reg,
		adapters: adapters,
		drivers:  drivers,
		profiles: profiles,
		retry:    retry,
		recorder: rec,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run starts the execution slots and blocks until ctx is cancelled and every
// in-flight execution has finished.
func (p *Pool) Run(ctx context.Context) {
	p.logger.Info("starting submission worker pool", "slots", p.cfg.PoolSize)
	for i := range p.cfg.PoolSize {
		p.wg.Add(1)
		go p.runSlot(ctx, fmt.Sprintf("worker-%d", i))
	}
	p.wg.Add(1)
	go p.reportDepth(ctx)
	p.wg.Wait()
	p.logger.Info("submission worker pool stopped")
}

// runSlot is one execution slot's lease loop. A failing task never stalls
// the slot; every path ends back at the top of the loop.
func (p *Pool) runSlot(ctx context.Context, workerID string) {
	defer p.wg.Done()
	logger := p.logger.With("worker_id", workerID)
	logger.Info("starting worker slot")

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down worker slot")
			return
		default:
		}

		task, err := p.queue.Lease(ctx, workerID, p.cfg.Visibility)
		if err != nil {
			logger.Error("lease failed", "error", err)
			p.sleep(ctx, p.cfg.PollInterval)
			continue
		}
		if task == nil {
			p.sleep(ctx, p.cfg.PollInterval)
			continue
		}

		if p.metrics != nil {
			p.metrics.TasksLeased.WithLabelValues(task.PriorityTier.String()).Inc()
		}
		p.processTask(ctx, logger, task)
	}
}

// processTask executes one leased task and settles its lease according to
// the retry controller's decision. Settlement uses a detached context so a
// shutdown mid-execution cannot strand the lease bookkeeping.
func (p *Pool) processTask(ctx context.Context, logger *slog.Logger, task *core.SubmissionTask) {
	strategy := p.registry.Resolve(task.TargetURL)
	started := time.Now()
	outcome := p.execute(ctx, logger, task, strategy)
	if p.metrics != nil {
		p.metrics.ExecutionSeconds.WithLabelValues(outcome.AdapterKind).Observe(time.Since(started).Seconds())
	}

	decision := p.retry.Classify(task, outcome)

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	switch {
	case decision.DeadLetter:
		logger.Warn("task exhausted retry budget, dead-lettering",
			"task_id", task.TaskID, "attempts", task.AttemptCount, "last_reason", outcome.ReasonCode)
		if err := p.queue.DeadLetter(settleCtx, task.TaskID, string(outcome.ReasonCode)); err != nil {
			logger.Error("dead-letter failed", "task_id", task.TaskID, "error", err)
			return
		}
		if p.metrics != nil {
			p.metrics.DeadLettered.Inc()
		}
		dead := *outcome
		dead.Status = core.StatusDeadLettered
		dead.ReasonCode = core.ReasonRetriesExhausted
		if err := p.recorder.Record(settleCtx, &dead); err != nil {
			logger.Error("failed to record dead-letter outcome", "task_id", task.TaskID, "error", err)
		}

	case decision.Requeue:
		notBefore := time.Now().UTC().Add(decision.Delay)
		logger.Info("re-enqueueing task",
			"task_id", task.TaskID, "reason", outcome.ReasonCode,
			"attempt", task.AttemptCount, "delay", decision.Delay)
		if err := p.queue.Nack(settleCtx, task, notBefore); err != nil {
			logger.Error("nack failed", "task_id", task.TaskID, "error", err)
			return
		}
		if err := p.recorder.RecordAttempt(settleCtx, outcome); err != nil {
			logger.Error("failed to record attempt outcome", "task_id", task.TaskID, "error", err)
		}

	default:
		if err := p.recorder.Record(settleCtx, outcome); err != nil {
			// Keep the lease un-acked: the task reappears after the
			// visibility timeout and the outcome is recorded on a later pass.
			logger.Error("failed to record outcome, leaving lease to expire",
				"task_id", task.TaskID, "error", err)
			return
		}
		if err := p.queue.Ack(settleCtx, task.TaskID); err != nil {
			logger.Error("ack failed", "task_id", task.TaskID, "error", err)
		}
	}
}

// execute runs the adapter for one task under the strategy's wall-clock
// timeout, with panic containment: an adapter crash becomes a retryable
// WorkerFault outcome instead of killing the slot.
func (p *Pool) execute(ctx context.Context, logger *slog.Logger, task *core.SubmissionTask, strategy registry.TargetStrategy) (outcome *core.SubmissionOutcome) {
	timeout := strategy.Timeout
	if timeout <= 0 {
		timeout = p.cfg.DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("adapter panicked", "task_id", task.TaskID, "panic", r)
			outcome = &core.SubmissionOutcome{
				TaskID:       task.TaskID,
				Status:       core.StatusFailedRetryable,
				ReasonCode:   core.ReasonWorkerFault,
				Detail:       fmt.Sprintf("adapter panic: %v", r),
				AdapterKind:  strategy.AdapterKind,
				AttemptCount: task.AttemptCount,
				CompletedAt:  time.Now().UTC(),
			}
		}
	}()

	profile, err := p.profiles.GetProfile(execCtx, task.CandidateProfileRef)
	if err != nil {
		return p.infraOutcome(task, strategy, fmt.Errorf("profile fetch: %w", err))
	}

	driver, release, err := p.drivers.NewSession(execCtx)
	if err != nil {
		return p.infraOutcome(task, strategy, fmt.Errorf("driver session: %w", err))
	}
	defer release()

	a := p.adapters.ForKind(strategy.AdapterKind)
	out := a.Execute(execCtx, task, strategy, driver, profile)

	// A cancellation-on-timeout surfaces through whatever driver call was in
	// flight; the reason code must say timeout, not a generic infra failure.
	if execCtx.Err() != nil && out.Status == core.StatusFailedRetryable {
		out.ReasonCode = core.ReasonTimeout
	}
	return out
}

func (p *Pool) infraOutcome(task *core.SubmissionTask, strategy registry.TargetStrategy, err error) *core.SubmissionOutcome {
	return &core.SubmissionOutcome{
		TaskID:       task.TaskID,
		Status:       core.StatusFailedRetryable,
		ReasonCode:   core.ReasonFor(err),
		Detail:       err.Error(),
		AdapterKind:  strategy.AdapterKind,
		AttemptCount: task.AttemptCount,
		CompletedAt:  time.Now().UTC(),
	}
}

// sleep waits for roughly d with jitter, returning early on cancellation.
// Jitter keeps idle slots from polling the queue in lockstep.
func (p *Pool) sleep(ctx context.Context, d time.Duration) {
	d = d + time.Duration(rand.Int64N(int64(d)/2+1))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// reportDepth refreshes the queue depth gauges while the pool runs.
func (p *Pool) reportDepth(ctx context.Context) {
	defer p.wg.Done()
	if p.metrics == nil {
		return
	}
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := p.queue.Stats(ctx)
			if err != nil {
				p.logger.Warn("queue stats failed", "error", err)
				continue
			}
			p.metrics.QueueDepth.Reset()
			for tier, n := range stats.PendingByTier {
				p.metrics.QueueDepth.WithLabelValues(tier.String()).Set(float64(n))
			}
			p.metrics.TasksInFlight.Set(float64(stats.InFlight))
		}
	}
}
