package cloud

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

func TestIsPolicyRetry(t *testing.T) {
	assert.True(t, IsPolicyRetry(errors.New("Please retry the request")))
	assert.True(t, IsPolicyRetry(errors.New("please retry")))
	assert.True(t, IsPolicyRetry(errors.Wrap(errors.New("Concurrent policy changes, please retry"), "setIamPolicy")))
	assert.False(t, IsPolicyRetry(errors.New("permission denied")))
	assert.False(t, IsPolicyRetry(nil))
}

func TestIsEnvironmentNotReady(t *testing.T) {
	assert.True(t, IsEnvironmentNotReady(errors.New("project is still initializing, wait a few minutes")))
	assert.False(t, IsEnvironmentNotReady(errors.New("quota exceeded")))
	assert.False(t, IsEnvironmentNotReady(nil))
}

func TestValidationErrorReportsAllViolations(t *testing.T) {
	err := &ValidationError{Errors: field.ErrorList{
		field.Required(field.NewPath("name"), "cluster name is required"),
		field.Required(field.NewPath("zones"), "at least one zone is required"),
	}}

	assert.True(t, IsValidationError(err))
	assert.Len(t, err.Violations(), 2)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "zones")

	assert.False(t, IsValidationError(errors.New("other")))
}

func TestRetryExhaustedErrorUnwraps(t *testing.T) {
	cause := errors.New("please retry")
	err := &RetryExhaustedError{Op: "assign role", Attempts: 20, Last: cause}

	assert.Contains(t, err.Error(), "assign role")
	assert.True(t, errors.Is(err, cause))
}
