package core

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks . PageHandle,AutomationDriver,DriverFactory,CaptchaSolver,ProfileService,OutcomeSink

// PageHandle identifies one live page inside a driver session.
type PageHandle interface {
	URL() string
}

// AutomationDriver is the narrow interface to whatever browser automation
// capability backs an execution. All calls honor context cancellation so a
// timed-out execution releases the underlying session promptly.
type AutomationDriver interface {
	// Navigate loads the target URL and returns a handle to the resulting page.
	Navigate(ctx context.Context, url string) (PageHandle, error)

	// DiscoverFields inspects the page for application form fields.
	DiscoverFields(ctx context.Context, page PageHandle) ([]FormFieldDescriptor, error)

	// Fill writes the given assignments into the form.
	Fill(ctx context.Context, page PageHandle, assignments []FieldAssignment) error

	// Submit submits the form and returns a handle to the resulting page.
	// A detected anti-automation challenge surfaces as *CaptchaChallengeError.
	Submit(ctx context.Context, page PageHandle) (PageHandle, error)

	// SolveChallenge applies a solver token to a pending challenge on the page.
	SolveChallenge(ctx context.Context, page PageHandle, token string) error

	// PageState returns a textual marker of the page's current state, matched
	// by adapters against per-strategy success and failure signatures.
	PageState(ctx context.Context, page PageHandle) (string, error)

	// CaptureEvidence stores a verification artifact for the page and returns
	// an opaque reference to it.
	CaptureEvidence(ctx context.Context, page PageHandle) (string, error)

	// Close releases the page.
	Close(ctx context.Context, page PageHandle) error
}

// DriverFactory opens isolated driver sessions. Every task execution gets a
// fresh session so no form or login state leaks across tasks; the returned
// cleanup must be safe to call on every exit path.
type DriverFactory interface {
	NewSession(ctx context.Context) (AutomationDriver, func(), error)
}

// CaptchaSolver is the optional external challenge-solving capability. A
// solver failure or deadline overrun makes the execution retryable, never
// fatal to the worker pool.
type CaptchaSolver interface {
	Solve(ctx context.Context, challengeRef string, deadline time.Time) (string, error)
}
