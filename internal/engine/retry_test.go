package engine

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oks-citadel/applyflow/internal/core"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func retryTask() *core.SubmissionTask {
	return core.NewSubmissionTask("profile-1", "posting-1", "https://boards.greenhouse.io/acme/jobs/1", core.TierStandard)
}

func outcomeWith(task *core.SubmissionTask, status core.TaskStatus, reason core.ReasonCode) *core.SubmissionOutcome {
	return &core.SubmissionOutcome{
		TaskID:       task.TaskID,
		Status:       status,
		ReasonCode:   reason,
		AdapterKind:  "greenhouse",
		AttemptCount: task.AttemptCount,
		CompletedAt:  time.Now().UTC(),
	}
}

func TestClassifyTerminalOutcomesFinalize(t *testing.T) {
	c := NewRetryController(DefaultRetryConfig(), 10, nil, testLogger)

	tests := []struct {
		name   string
		status core.TaskStatus
		reason core.ReasonCode
	}{
		{name: "Success", status: core.StatusSucceeded, reason: core.ReasonSubmitted},
		{name: "Posting closed", status: core.StatusFailedTerminal, reason: core.ReasonPostingClosed},
		{name: "Duplicate application", status: core.StatusFailedTerminal, reason: core.ReasonDuplicateApplication},
		{name: "Missing attribute", status: core.StatusFailedTerminal, reason: core.ReasonMissingRequiredAttribute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := retryTask()
			d := c.Classify(task, outcomeWith(task, tc.status, tc.reason))
			assert.False(t, d.Requeue)
			assert.False(t, d.DeadLetter)
			assert.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestClassifyRetryableRequeuesWithBackoff(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: time.Hour, MaxAttempts: 5, JitterFrac: 0.2}
	c := NewRetryController(cfg, 10, nil, testLogger)

	task := retryTask()
	task.AttemptCount = 2
	d := c.Classify(task, outcomeWith(task, core.StatusFailedRetryable, core.ReasonInfrastructure))

	require.True(t, d.Requeue)
	assert.False(t, d.DeadLetter)
	// attempt 2 means base*4, jittered by at most 20% either way.
	assert.GreaterOrEqual(t, d.Delay, time.Duration(float64(4*time.Second)*0.8))
	assert.LessOrEqual(t, d.Delay, time.Duration(float64(4*time.Second)*1.2))
}

func TestBackoffIsMonotonicUpToCap(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: time.Hour, MaxAttempts: 10, JitterFrac: 0.2}
	c := NewRetryController(cfg, 10, nil, testLogger)

	// With doubling and jitter under a third, the worst case of one attempt
	// never exceeds the best case of the next.
	prev := time.Duration(0)
	for attempt := range 8 {
		d := c.backoff(attempt)
		assert.GreaterOrEqual(t, d, prev, "delay for attempt %d regressed", attempt)
		prev = d
	}
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: 10 * time.Second, MaxAttempts: 50, JitterFrac: 0.2}
	c := NewRetryController(cfg, 10, nil, testLogger)

	for _, attempt := range []int{10, 31, 64} {
		d := c.backoff(attempt)
		assert.LessOrEqual(t, d, time.Duration(float64(10*time.Second)*1.2))
	}
}

func TestClassifyDeadLettersAtAttemptCap(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: time.Hour, MaxAttempts: 5, JitterFrac: 0.2}
	c := NewRetryController(cfg, 10, nil, testLogger)

	task := retryTask()
	task.AttemptCount = 5
	d := c.Classify(task, outcomeWith(task, core.StatusFailedRetryable, core.ReasonInfrastructure))

	assert.True(t, d.DeadLetter)
	assert.False(t, d.Requeue)
	assert.Equal(t, core.ReasonRetriesExhausted, d.Reason)
}

func TestClassifyAmbiguousOutcomeFeedsEscalation(t *testing.T) {
	threshold := 3
	c := NewRetryController(DefaultRetryConfig(), threshold, nil, testLogger)

	task := retryTask()
	for range threshold {
		out := outcomeWith(task, core.StatusFailedRetryable, core.ReasonAmbiguousOutcome)
		c.Classify(task, out)
	}

	assert.Equal(t, threshold, task.AmbiguityCount)
	assert.Contains(t, c.FlaggedStrategies(), "greenhouse")
}

func TestClassifyCaptchaFailureDoesNotFeedEscalation(t *testing.T) {
	threshold := 2
	c := NewRetryController(DefaultRetryConfig(), threshold, nil, testLogger)

	task := retryTask()
	for range threshold * 2 {
		out := outcomeWith(task, core.StatusFailedRetryable, core.ReasonCaptchaFailed)
		c.Classify(task, out)
	}

	assert.Zero(t, task.AmbiguityCount)
	assert.Empty(t, c.FlaggedStrategies())
}

func TestClassifyNeverSilentlyDropsRetryableWork(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Millisecond, MaxDelay: time.Second, MaxAttempts: 3, JitterFrac: 0.1}
	c := NewRetryController(cfg, 10, nil, testLogger)

	// Every retryable classification either requeues or dead-letters.
	task := retryTask()
	for attempt := range 6 {
		task.AttemptCount = attempt
		d := c.Classify(task, outcomeWith(task, core.StatusFailedRetryable, core.ReasonInfrastructure))
		assert.True(t, d.Requeue || d.DeadLetter, "attempt %d produced a dropped task", attempt)
	}
}

func TestNewRetryControllerDefaultsBadConfig(t *testing.T) {
	c := NewRetryController(RetryConfig{MaxAttempts: -1, BaseDelay: -time.Second, JitterFrac: 2}, 0, nil, testLogger)

	task := retryTask()
	task.AttemptCount = 5
	d := c.Classify(task, outcomeWith(task, core.StatusFailedRetryable, core.ReasonInfrastructure))
	assert.True(t, d.DeadLetter, "defaulted MaxAttempts should cap at 5")
}
