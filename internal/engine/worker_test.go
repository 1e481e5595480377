package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oks-citadel/applyflow/internal/adapter"
	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/mapper"
	"github.com/oks-citadel/applyflow/internal/queue"
	"github.com/oks-citadel/applyflow/internal/recorder"
	"github.com/oks-citadel/applyflow/internal/registry"
	"github.com/oks-citadel/applyflow/internal/storage"
)

// scriptedDriver plays out one execution: an optional navigation failure,
// panic, or stall, then a fixed form and post-submission page state.
type scriptedDriver struct {
	mu         sync.Mutex
	navErr     error
	panics     bool
	stall      time.Duration
	preState   string
	fields     []core.FormFieldDescriptor
	postState  string
	stateCalls int
}

type scriptPage struct{ url string }

func (p scriptPage) URL() string { return p.url }

func (d *scriptedDriver) Navigate(ctx context.Context, url string) (core.PageHandle, error) {
	if d.panics {
		panic("scripted adapter crash")
	}
	if d.stall > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.stall):
		}
	}
	if d.navErr != nil {
		return nil, d.navErr
	}
	return scriptPage{url: url}, nil
}

func (d *scriptedDriver) DiscoverFields(_ context.Context, _ core.PageHandle) ([]core.FormFieldDescriptor, error) {
	return d.fields, nil
}

func (d *scriptedDriver) Fill(_ context.Context, _ core.PageHandle, _ []core.FieldAssignment) error {
	return nil
}

func (d *scriptedDriver) Submit(_ context.Context, page core.PageHandle) (core.PageHandle, error) {
	return page, nil
}

func (d *scriptedDriver) SolveChallenge(_ context.Context, _ core.PageHandle, _ string) error {
	return nil
}

func (d *scriptedDriver) PageState(_ context.Context, _ core.PageHandle) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateCalls++
	if d.stateCalls == 1 {
		return d.preState, nil
	}
	return d.postState, nil
}

func (d *scriptedDriver) CaptureEvidence(_ context.Context, _ core.PageHandle) (string, error) {
	return "evidence/scripted", nil
}

func (d *scriptedDriver) Close(_ context.Context, _ core.PageHandle) error { return nil }

// scriptedFactory hands out one scripted driver per execution, in order.
type scriptedFactory struct {
	mu       sync.Mutex
	scripts  []*scriptedDriver
	sessions int
}

func (f *scriptedFactory) NewSession(_ context.Context) (core.AutomationDriver, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.scripts) == 0 {
		return nil, nil, errors.New("no scripted session available")
	}
	d := f.scripts[0]
	f.scripts = f.scripts[1:]
	f.sessions++
	return d, func() {}, nil
}

type stubProfiles struct{}

func (stubProfiles) GetProfile(_ context.Context, ref string) (*core.CandidateProfile, error) {
	return &core.CandidateProfile{
		Ref:       ref,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	}, nil
}

func successScript() *scriptedDriver {
	return &scriptedDriver{
		preState: "application form ready",
		fields: []core.FormFieldDescriptor{
			{FieldID: "f1", Label: "First Name", InputKind: core.InputText, IsRequired: true},
			{FieldID: "f2", Label: "Email Address", InputKind: core.InputEmail, IsRequired: true},
		},
		postState: "we have received your application",
	}
}

// startPool wires a single-slot pool over the memory queue and scripted
// drivers. The returned stop func cancels the pool and waits for it.
func startPool(t *testing.T, q queue.Queue, factory *scriptedFactory, maxAttempts int) (storage.OutcomeStore, func()) {
	t.Helper()

	store := storage.NewMemoryStore()
	rec := recorder.New(store, &recorder.LogSink{Logger: testLogger}, nil, testLogger)
	rc := NewRetryController(RetryConfig{
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		MaxAttempts: maxAttempts,
		JitterFrac:  0.1,
	}, 10, nil, testLogger)

	reg, err := registry.New(nil)
	require.NoError(t, err)
	adapters := adapter.NewSet(adapter.NewGeneric(mapper.New(mapper.DefaultFloor), nil, testLogger))

	pool := NewPool(PoolConfig{
		PoolSize:       1,
		Visibility:     time.Minute,
		PollInterval:   5 * time.Millisecond,
		DefaultTimeout: 100 * time.Millisecond,
	}, q, reg, adapters, factory, stubProfiles{}, rc, rec, nil, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()
	return store, func() {
		cancel()
		<-done
	}
}

// waitForOutcome blocks until the task settles. Intermediate attempt rows
// are recorded too, so it waits for a terminal or dead-lettered row rather
// than the first row.
func waitForOutcome(t *testing.T, store storage.OutcomeStore, task *core.SubmissionTask) core.SubmissionOutcome {
	t.Helper()
	var last core.SubmissionOutcome
	require.Eventually(t, func() bool {
		outcomes, err := store.ListOutcomesForTask(context.Background(), task.TaskID)
		if err != nil || len(outcomes) == 0 {
			return false
		}
		last = outcomes[len(outcomes)-1]
		return last.Terminal() || last.Status == core.StatusDeadLettered
	}, 5*time.Second, 10*time.Millisecond, "no settled outcome recorded for task")
	return last
}

func TestPoolHappyPath(t *testing.T) {
	q := queue.NewMemoryQueue(10)
	factory := &scriptedFactory{scripts: []*scriptedDriver{successScript()}}

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	store, stop := startPool(t, q, factory, 3)
	defer stop()

	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusSucceeded, out.Status)
	assert.Equal(t, core.ReasonSubmitted, out.ReasonCode)
	assert.Zero(t, out.AttemptCount)
	assert.Equal(t, "evidence/scripted", out.EvidenceRef)

	require.Eventually(t, func() bool {
		stats, err := q.Stats(context.Background())
		return err == nil && stats.InFlight == 0 && len(stats.PendingByTier) == 0
	}, 2*time.Second, 10*time.Millisecond, "queue should drain after the ack")
}

func TestPoolRetriesTransientFailureThenSucceeds(t *testing.T) {
	q := queue.NewMemoryQueue(10)
	factory := &scriptedFactory{scripts: []*scriptedDriver{
		{navErr: errors.New("connection reset")},
		successScript(),
	}}

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	store, stop := startPool(t, q, factory, 3)
	defer stop()

	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusSucceeded, out.Status)
	assert.Equal(t, 1, out.AttemptCount, "the success should carry the incremented attempt count")

	// The failed first attempt stays queryable alongside the final outcome.
	history, err := store.ListOutcomesForTask(context.Background(), task.TaskID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.StatusFailedRetryable, history[0].Status)
	assert.Equal(t, core.ReasonInfrastructure, history[0].ReasonCode)
}

func TestPoolTerminalFailureDoesNotRetry(t *testing.T) {
	q := queue.NewMemoryQueue(10)
	factory := &scriptedFactory{scripts: []*scriptedDriver{
		{preState: "this position has been filled"},
	}}

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	store, stop := startPool(t, q, factory, 3)
	defer stop()

	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusFailedTerminal, out.Status)
	assert.Equal(t, core.ReasonPostingClosed, out.ReasonCode)

	// Exactly one driver session: terminal conditions never burn retries.
	time.Sleep(50 * time.Millisecond)
	factory.mu.Lock()
	defer factory.mu.Unlock()
	assert.Equal(t, 1, factory.sessions)
}

func TestPoolDeadLettersAfterRetriesExhausted(t *testing.T) {
	q := queue.NewMemoryQueue(10)
	factory := &scriptedFactory{scripts: []*scriptedDriver{
		{navErr: errors.New("connection reset")},
		{navErr: errors.New("connection reset")},
		{navErr: errors.New("connection reset")},
		{navErr: errors.New("connection reset")},
	}}

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	store, stop := startPool(t, q, factory, 3)
	defer stop()

	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusDeadLettered, out.Status)
	assert.Equal(t, core.ReasonRetriesExhausted, out.ReasonCode)

	entries, err := q.ListDeadLetters(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, task.TaskID, entries[0].Task.TaskID)
	assert.Equal(t, 3, entries[0].Task.AttemptCount)

	// Three retried attempts plus the dead-letter row.
	history, err := store.ListOutcomesForTask(context.Background(), task.TaskID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestPoolSurvivesAdapterPanic(t *testing.T) {
	q := queue.NewMemoryQueue(10)
	factory := &scriptedFactory{scripts: []*scriptedDriver{
		{panics: true},
		successScript(),
	}}

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	store, stop := startPool(t, q, factory, 3)
	defer stop()

	// The panic becomes a retryable worker fault and the same slot completes
	// the retry; a dead slot would leave the task stuck in flight.
	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusSucceeded, out.Status)
	assert.Equal(t, 1, out.AttemptCount)
}

func TestPoolTimedOutExecutionsRetryThenSucceed(t *testing.T) {
	q := queue.NewMemoryQueue(10)
	factory := &scriptedFactory{scripts: []*scriptedDriver{
		{stall: time.Second},
		{stall: time.Second},
		successScript(),
	}}

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	store, stop := startPool(t, q, factory, 5)
	defer stop()

	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusSucceeded, out.Status)
	assert.Equal(t, 2, out.AttemptCount, "both stalled executions should count as attempts")
}

func TestPoolRespectsStrategyTimeoutOverDefault(t *testing.T) {
	q := queue.NewMemoryQueue(10)

	// The driver stalls past the default timeout but under the strategy's.
	script := successScript()
	script.stall = 150 * time.Millisecond
	factory := &scriptedFactory{scripts: []*scriptedDriver{script}}

	store := storage.NewMemoryStore()
	rec := recorder.New(store, &recorder.LogSink{Logger: testLogger}, nil, testLogger)
	rc := NewRetryController(DefaultRetryConfig(), 10, nil, testLogger)

	reg, err := registry.New([]registry.TargetStrategy{
		{MatchPattern: "careers.example.com", AdapterKind: registry.GenericAdapterKind, Timeout: time.Second},
	})
	require.NoError(t, err)
	adapters := adapter.NewSet(adapter.NewGeneric(mapper.New(mapper.DefaultFloor), nil, testLogger))

	pool := NewPool(PoolConfig{
		PoolSize:       1,
		Visibility:     time.Minute,
		PollInterval:   5 * time.Millisecond,
		DefaultTimeout: 50 * time.Millisecond,
	}, q, reg, adapters, factory, stubProfiles{}, rc, rec, nil, testLogger)

	task := core.NewSubmissionTask("profile-1", "posting-1", "https://careers.example.com/apply/1", core.TierStandard)
	require.NoError(t, q.Enqueue(context.Background(), task))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	out := waitForOutcome(t, store, task)
	assert.Equal(t, core.StatusSucceeded, out.Status)
}
