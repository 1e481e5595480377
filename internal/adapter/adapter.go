// Package adapter implements the strategy-specific executors that drive one
// family of third-party application flows each, plus the mandatory generic
// fallback. Every execution runs the same state machine: navigate, discover
// the form, assign fields, submit, verify. Adapters never panic across the
// worker boundary and never return a bare error: every path ends in a
// SubmissionOutcome.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oks-citadel/applyflow/internal/core"
	"github.com/oks-citadel/applyflow/internal/mapper"
	"github.com/oks-citadel/applyflow/internal/registry"
)

// Adapter drives one family of ATS form flows.
type Adapter interface {
	// Kind names the adapter family, matching TargetStrategy.AdapterKind.
	Kind() string

	// Execute runs one submission attempt against a fresh driver session.
	// It always returns an outcome; classification of that outcome into
	// requeue-or-finalize belongs to the retry controller, not to adapters.
	Execute(ctx context.Context, task *core.SubmissionTask, strategy registry.TargetStrategy,
		driver core.AutomationDriver, profile *core.CandidateProfile) *core.SubmissionOutcome
}

// Set resolves an adapter by kind, falling back to the generic adapter for
// kinds with no dedicated implementation.
type Set struct {
	byKind   map[string]Adapter
	fallback Adapter
}

// NewSet builds an adapter set. The generic fallback is mandatory.
func NewSet(fallback Adapter, named ...Adapter) *Set {
	s := &Set{byKind: make(map[string]Adapter), fallback: fallback}
	for _, a := range named {
		s.byKind[a.Kind()] = a
	}
	return s
}

// ForKind returns the adapter registered for kind, or the generic fallback.
func (s *Set) ForKind(kind string) Adapter {
	if a, ok := s.byKind[kind]; ok {
		return a
	}
	return s.fallback
}

// signatures are the known page-state markers for one adapter family,
// matched case-insensitively as substrings against the driver's page state.
type signatures struct {
	success   []string
	closed    []string
	duplicate []string
	rejected  []string
	authWall  []string
}

// familyAdapter is the shared state-machine implementation parameterized by a
// family's signature table. Named adapters and the generic fallback differ
// only in their signatures and mapping strictness.
type familyAdapter struct {
	kind   string
	mapper *mapper.Mapper
	solver core.CaptchaSolver
	sigs   signatures
	logger *slog.Logger
}

func (a *familyAdapter) Kind() string { return a.kind }

// execution carries per-attempt state so every exit path can capture
// evidence and close the page.
type execution struct {
	adapter *familyAdapter
	task    *core.SubmissionTask
	driver  core.AutomationDriver
	page    core.PageHandle
	logger  *slog.Logger
}

func (a *familyAdapter) Execute(ctx context.Context, task *core.SubmissionTask, strategy registry.TargetStrategy,
	driver core.AutomationDriver, profile *core.CandidateProfile) *core.SubmissionOutcome {

	e := &execution{
		adapter: a,
		task:    task,
		driver:  driver,
		logger: a.logger.With(
			"task_id", task.TaskID,
			"adapter", a.kind,
			"target", task.TargetURL,
		),
	}
	return e.run(ctx, strategy, profile)
}

func (e *execution) run(ctx context.Context, strategy registry.TargetStrategy, profile *core.CandidateProfile) *core.SubmissionOutcome {
	a := e.adapter

	// Navigating
	page, err := e.driver.Navigate(ctx, e.task.TargetURL)
	if err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, &core.InfrastructureError{Op: "navigate", Err: err}))
	}
	e.page = page
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		// e.page tracks the current handle; after submit it is the result
		// page, which would otherwise stay open until session teardown.
		if err := e.driver.Close(closeCtx, e.page); err != nil {
			e.logger.Warn("failed to close driver page", "error", err)
		}
	}()

	// Business-terminal conditions visible before the form short-circuit
	// retry entirely.
	state, err := e.driver.PageState(ctx, page)
	if err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, &core.InfrastructureError{Op: "page_state", Err: err}))
	}
	if out := e.terminalFromState(state); out != nil {
		return e.finish(ctx, out)
	}
	if matchesAny(state, a.sigs.authWall) {
		return e.finish(ctx, retryableOutcome(e.task, a.kind, core.ReasonInfrastructure, "authentication wall before form"))
	}

	// FormDiscovered
	descriptors, err := e.driver.DiscoverFields(ctx, page)
	if err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, &core.InfrastructureError{Op: "discover_fields", Err: err}))
	}
	if len(descriptors) == 0 {
		return e.finish(ctx, retryableOutcome(e.task, a.kind, core.ReasonInfrastructure, "no form fields discovered"))
	}

	// FieldsAssigned
	assignments, err := a.mapper.Map(descriptors, profile)
	if err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, err))
	}
	e.logger.Debug("fields assigned", "fields", len(descriptors), "assignments", len(assignments))

	if err := e.driver.Fill(ctx, page, assignments); err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, &core.InfrastructureError{Op: "fill", Err: err}))
	}

	// Submitted
	result, err := e.submitWithChallenge(ctx, page)
	if err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, err))
	}
	e.page = result

	// Verifying: the resulting state must match a known signature. An
	// unrecognized state is never assumed successful.
	state, err = e.driver.PageState(ctx, result)
	if err != nil {
		return e.finish(ctx, errOutcome(e.task, a.kind, &core.InfrastructureError{Op: "verify", Err: err}))
	}
	return e.finish(ctx, e.classifyResult(state))
}

// submitWithChallenge submits the form, solving at most one CAPTCHA challenge
// through the configured solver before resubmitting.
func (e *execution) submitWithChallenge(ctx context.Context, page core.PageHandle) (core.PageHandle, error) {
	result, err := e.driver.Submit(ctx, page)
	var challenge *core.CaptchaChallengeError
	if !errors.As(err, &challenge) {
		if err != nil {
			return nil, &core.InfrastructureError{Op: "submit", Err: err}
		}
		return result, nil
	}

	if e.adapter.solver == nil {
		return nil, fmt.Errorf("%w: challenge detected but no solver configured", core.ErrCaptchaFailed)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(time.Minute)
	}
	e.logger.Info("solving captcha challenge", "challenge", challenge.ChallengeRef)
	token, err := e.adapter.solver.Solve(ctx, challenge.ChallengeRef, deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCaptchaFailed, err)
	}
	if err := e.driver.SolveChallenge(ctx, page, token); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCaptchaFailed, err)
	}

	result, err = e.driver.Submit(ctx, page)
	if err != nil {
		return nil, &core.InfrastructureError{Op: "submit", Err: err}
	}
	return result, nil
}

// terminalFromState maps a pre-submission page state to a terminal outcome,
// or nil when the flow should continue.
func (e *execution) terminalFromState(state string) *core.SubmissionOutcome {
	switch {
	case matchesAny(state, e.adapter.sigs.closed):
		return terminalOutcome(e.task, e.adapter.kind, core.ReasonPostingClosed, "posting closed or withdrawn")
	case matchesAny(state, e.adapter.sigs.duplicate):
		return terminalOutcome(e.task, e.adapter.kind, core.ReasonDuplicateApplication, "application already on file")
	default:
		return nil
	}
}

// classifyResult interprets the post-submission page state against the
// family's signature table.
func (e *execution) classifyResult(state string) *core.SubmissionOutcome {
	a := e.adapter
	switch {
	case matchesAny(state, a.sigs.success):
		return &core.SubmissionOutcome{
			TaskID:       e.task.TaskID,
			Status:       core.StatusSucceeded,
			ReasonCode:   core.ReasonSubmitted,
			AdapterKind:  a.kind,
			AttemptCount: e.task.AttemptCount,
			CompletedAt:  time.Now().UTC(),
		}
	case matchesAny(state, a.sigs.closed):
		return terminalOutcome(e.task, a.kind, core.ReasonPostingClosed, "posting closed during submission")
	case matchesAny(state, a.sigs.duplicate):
		return terminalOutcome(e.task, a.kind, core.ReasonDuplicateApplication, "duplicate application rejected")
	case matchesAny(state, a.sigs.rejected):
		return retryableOutcome(e.task, a.kind, core.ReasonInfrastructure, "submission rejected: "+truncate(state, 200))
	default:
		return retryableOutcome(e.task, a.kind, core.ReasonAmbiguousOutcome, "unrecognized post-submission state: "+truncate(state, 200))
	}
}

// finish attaches best-effort evidence to an outcome. Evidence capture uses a
// detached context so a timed-out execution still gets its audit artifact.
func (e *execution) finish(ctx context.Context, out *core.SubmissionOutcome) *core.SubmissionOutcome {
	if e.page == nil {
		return out
	}
	evCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	ref, err := e.driver.CaptureEvidence(evCtx, e.page)
	if err != nil {
		e.logger.Warn("evidence capture failed", "error", err)
		return out
	}
	out.EvidenceRef = ref
	return out
}

func errOutcome(task *core.SubmissionTask, kind string, err error) *core.SubmissionOutcome {
	status := core.StatusFailedRetryable
	if !core.Retryable(err) {
		status = core.StatusFailedTerminal
	}
	return &core.SubmissionOutcome{
		TaskID:       task.TaskID,
		Status:       status,
		ReasonCode:   core.ReasonFor(err),
		Detail:       err.Error(),
		AdapterKind:  kind,
		AttemptCount: task.AttemptCount,
		CompletedAt:  time.Now().UTC(),
	}
}

func terminalOutcome(task *core.SubmissionTask, kind string, reason core.ReasonCode, detail string) *core.SubmissionOutcome {
	return &core.SubmissionOutcome{
		TaskID:       task.TaskID,
		Status:       core.StatusFailedTerminal,
		ReasonCode:   reason,
		Detail:       detail,
		AdapterKind:  kind,
		AttemptCount: task.AttemptCount,
		CompletedAt:  time.Now().UTC(),
	}
}

func retryableOutcome(task *core.SubmissionTask, kind string, reason core.ReasonCode, detail string) *core.SubmissionOutcome {
	return &core.SubmissionOutcome{
		TaskID:       task.TaskID,
		Status:       core.StatusFailedRetryable,
		ReasonCode:   reason,
		Detail:       detail,
		AdapterKind:  kind,
		AttemptCount: task.AttemptCount,
		CompletedAt:  time.Now().UTC(),
	}
}

func matchesAny(state string, markers []string) bool {
	s := strings.ToLower(state)
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
