package cloud

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidationError reports every constraint a cluster spec violates, not just
// the first, so a user can fix their config in one pass. It is returned
// before any remote call is made.
type ValidationError struct {
	Errors field.ErrorList
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid cluster options: %v", e.Errors.ToAggregate())
}

// Violations returns one human-readable message per violated constraint.
func (e *ValidationError) Violations() []string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return msgs
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// RetryExhaustedError is returned when a transient remote signal never
// cleared within the retry budget.
type RetryExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s: gave up after %d attempts: %v", e.Op, e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Last
}

// The upstream control plane signals transient unreadiness with specific
// message fragments rather than status codes. These two signatures, and only
// these, trigger a bounded-delay retry of the same operation.
const (
	policyRetrySignal = "please retry"
	envNotReadySignal = "wait a few minutes"
)

// IsPolicyRetry reports whether err is the eventual-consistency signal a
// fresh-policy write retry should follow.
func IsPolicyRetry(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), policyRetrySignal)
}

// IsEnvironmentNotReady reports whether err is the signal that the project's
// environment has not finished initializing and cluster creation should be
// retried after a long pause.
func IsEnvironmentNotReady(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), envNotReadySignal)
}
