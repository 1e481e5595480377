// Package engine runs the submission worker pool and the retry controller
// that decides, for every execution outcome, whether a task is re-enqueued,
// finalized, or dead-lettered. No other component re-enqueues tasks.
package engine

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/observability"
)

// RetryConfig bounds the backoff schedule.
type RetryConfig struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	JitterFrac  float64
}

// DefaultRetryConfig returns the engine's standard backoff policy.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		BaseDelay:   30 * time.Second,
		MaxDelay:    30 * time.Minute,
		MaxAttempts: 5,
		JitterFrac:  0.2,
	}
}

// Decision is the retry controller's verdict on one outcome.
type Decision struct {
	// Requeue re-enqueues the task invisible until now+Delay.
	Requeue bool
	Delay   time.Duration

	// DeadLetter quarantines the task for operator intervention.
	DeadLetter bool

	// Neither set means finalize: record the outcome and ack the task.
	Reason core.ReasonCode
}

// RetryController is the single classification point between adapter
// outcomes and queue mutations. It is pure apart from jitter and the
// cross-task ambiguity signal, so the backoff schedule tests independently
// of any execution.
type RetryController struct {
	cfg       RetryConfig
	ambiguity *ambiguityTracker
	logger    *slog.Logger
}

// NewRetryController creates a controller with the given policy.
// ambiguityThreshold is the number of ambiguous outcomes per strategy that
// flags it for out-of-band revalidation.
func NewRetryController(cfg RetryConfig, ambiguityThreshold int, metrics *observability.Metrics, logger *slog.Logger) *RetryController {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 30 * time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = 30 * time.Minute
	}
	if cfg.JitterFrac < 0 || cfg.JitterFrac >= 1 {
		cfg.JitterFrac = 0.2
	}
	return &RetryController{
		cfg:       cfg,
		ambiguity: newAmbiguityTracker(ambiguityThreshold, metrics, logger),
		logger:    logger,
	}
}

// Classify turns an execution outcome into a queue decision. Succeeded and
// FailedTerminal finalize immediately; retryable outcomes re-enqueue with
// exponential backoff until AttemptCount reaches the cap, at which point the
// task is dead-lettered, never silently dropped.
func (c *RetryController) Classify(task *core.SubmissionTask, outcome *core.SubmissionOutcome) Decision {
	if outcome.Terminal() {
		return Decision{Reason: outcome.ReasonCode}
	}

	// An ambiguous outcome retries like any infrastructure failure, but it
	// also feeds the per-strategy escalation signal: repeated ambiguity for
	// the same strategy means its signatures have drifted, not that this
	// task is unlucky. CAPTCHA failures deliberately do not feed the signal;
	// solver availability says nothing about page signatures.
	if outcome.ReasonCode == core.ReasonAmbiguousOutcome {
		task.AmbiguityCount++
		c.ambiguity.record(outcome.AdapterKind)
	}

	if task.AttemptCount >= c.cfg.MaxAttempts {
		return Decision{DeadLetter: true, Reason: core.ReasonRetriesExhausted}
	}
	return Decision{
		Requeue: true,
		Delay:   c.backoff(task.AttemptCount),
		Reason:  outcome.ReasonCode,
	}
}

// backoff computes base * 2^attempt with jitter, capped at MaxDelay. With a
// doubling schedule and jitter under a third, successive delays are
// non-decreasing up to the cap.
func (c *RetryController) backoff(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	delay := c.cfg.BaseDelay << uint(attempt)
	if delay > c.cfg.MaxDelay || delay <= 0 {
		delay = c.cfg.MaxDelay
	}
	jitter := 1 + c.cfg.JitterFrac*(2*rand.Float64()-1)
	return time.Duration(float64(delay) * jitter)
}

// FlaggedStrategies lists adapter kinds whose repeated ambiguous outcomes
// crossed the revalidation threshold.
func (c *RetryController) FlaggedStrategies() []string {
	return c.ambiguity.flaggedKinds()
}

// ambiguityTracker accumulates ambiguous outcomes per adapter kind across
// tasks. It is a cross-cutting signal for operators, not a per-task decision.
type ambiguityTracker struct {
	mu        sync.Mutex
	counts    map[string]int
	flagged   map[string]bool
	threshold int
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func newAmbiguityTracker(threshold int, metrics *observability.Metrics, logger *slog.Logger) *ambiguityTracker {
	if threshold <= 0 {
		threshold = 10
	}
	return &ambiguityTracker{
		counts:    make(map[string]int),
		flagged:   make(map[string]bool),
		threshold: threshold,
		metrics:   metrics,
		logger:    logger,
	}
}

func (t *ambiguityTracker) record(adapterKind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[adapterKind]++
	if t.counts[adapterKind] < t.threshold || t.flagged[adapterKind] {
		return
	}
	t.flagged[adapterKind] = true
	t.logger.Warn("strategy flagged for revalidation after repeated ambiguous outcomes",
		"adapter", adapterKind,
		"ambiguous_outcomes", t.counts[adapterKind],
	)
	if t.metrics != nil {
		t.metrics.StrategyFlagged.WithLabelValues(adapterKind).Inc()
	}
}

func (t *ambiguityTracker) flaggedKinds() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.flagged))
	for k := range t.flagged {
		out = append(out, k)
	}
	return out
}
