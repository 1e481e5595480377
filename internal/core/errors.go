package core

import (
	"context"
	"errors"
	"fmt"
)

// InfrastructureError wraps network, DNS, and driver transport failures.
// Always retryable.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure error during %s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// MappingError reports a required form field the mapper could not bind above
// the confidence floor. AttributeMissing distinguishes a profile that
// genuinely lacks the attribute (terminal) from an ambiguous or low-confidence
// match (retryable, the mapper may do better with a refreshed page).
type MappingError struct {
	FieldID          string
	Label            string
	AttributeMissing bool
}

func (e *MappingError) Error() string {
	if e.AttributeMissing {
		return fmt.Sprintf("required field %q (%s): profile has no matching attribute", e.Label, e.FieldID)
	}
	return fmt.Sprintf("required field %q (%s): no assignment above confidence floor", e.Label, e.FieldID)
}

// BusinessTerminalError reports a condition that makes the application
// permanently unsubmittable: posting withdrawn, duplicate application,
// candidate ineligible. Never retried.
type BusinessTerminalError struct {
	Reason ReasonCode
	Detail string
}

func (e *BusinessTerminalError) Error() string {
	return fmt.Sprintf("terminal: %s (%s)", e.Reason, e.Detail)
}

// CaptchaChallengeError is returned by a driver when a page presents an
// anti-automation challenge that must be solved before the flow can continue.
type CaptchaChallengeError struct {
	ChallengeRef string
}

func (e *CaptchaChallengeError) Error() string {
	return fmt.Sprintf("captcha challenge pending: %s", e.ChallengeRef)
}

// ErrAmbiguousOutcome marks a submission whose resulting page matched no
// known success or failure signature. It is never treated as success.
var ErrAmbiguousOutcome = errors.New("submission outcome unrecognized")

// ErrCaptchaFailed marks a challenge the solver could not clear in time.
// Retryable; it counts toward the standard retry cap, not the ambiguity signal.
var ErrCaptchaFailed = errors.New("captcha challenge unsolved")

// Retryable classifies an execution error per the engine's taxonomy: true for
// infrastructure faults, timeouts, solver failures, and ambiguous mappings;
// false for business-terminal conditions and genuinely missing attributes.
func Retryable(err error) bool {
	var bte *BusinessTerminalError
	if errors.As(err, &bte) {
		return false
	}
	var me *MappingError
	if errors.As(err, &me) {
		return !me.AttributeMissing
	}
	return true
}

// ReasonFor maps an execution error to the reason code recorded on its outcome.
func ReasonFor(err error) ReasonCode {
	var bte *BusinessTerminalError
	if errors.As(err, &bte) {
		return bte.Reason
	}
	var me *MappingError
	if errors.As(err, &me) {
		if me.AttributeMissing {
			return ReasonMissingRequiredAttribute
		}
		return ReasonAmbiguousMapping
	}
	if errors.Is(err, ErrAmbiguousOutcome) {
		return ReasonAmbiguousOutcome
	}
	if errors.Is(err, ErrCaptchaFailed) {
		return ReasonCaptchaFailed
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonInfrastructure
}
