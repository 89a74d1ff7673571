package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotInitializedError(t *testing.T) {
	err := NewNotInitializedError("/path/to/repo")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
	assert.Contains(t, err.Error(), "/path/to/repo")

	var notInitErr *NotInitializedError
	assert.True(t, errors.As(err, &notInitErr))
	assert.Equal(t, "/path/to/repo", notInitErr.Path)
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
	}{
		{
			name:    "simple field error",
			field:   "repositories",
			message: "cannot be empty",
		},
		{
			name:    "nested field error",
			field:   "repositories[0].name",
			message: "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)

			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
			assert.Contains(t, err.Error(), tt.message)

			var valErr *ValidationError
			assert.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, tt.message, valErr.Message)
		})
	}
}

func TestConfigError(t *testing.T) {
	innerErr := errors.New("file not found")
	err := NewConfigError("failed to load config", innerErr)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, err.Error(), "file not found")

	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "failed to load config", cfgErr.Message)
	assert.Equal(t, innerErr, cfgErr.Cause)
}

func TestGitError(t *testing.T) {
	innerErr := errors.New("not a git repository")
	err := NewGitError("service-a", "git operation failed", innerErr)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "git operation failed")
	assert.Contains(t, err.Error(), "service-a")

	var gitErr *GitError
	assert.True(t, errors.As(err, &gitErr))
	assert.Equal(t, "service-a", gitErr.Repository)
}

func TestGitErrorWithoutRepository(t *testing.T) {
	err := NewGitError("", "clone failed", nil)
	assert.NotContains(t, err.Error(), "[]")
}

func TestChangesetError(t *testing.T) {
	err := NewChangesetError("20260130-143022-abc123", "invalid format")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "20260130-143022-abc123")
	assert.Contains(t, err.Error(), "invalid format")

	var csErr *ChangesetError
	assert.True(t, errors.As(err, &csErr))
	assert.Equal(t, "20260130-143022-abc123", csErr.ID)
}

func TestDependencyError(t *testing.T) {
	err := NewDependencyError("unknown repository referenced", []string{"service-a", "service-b"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown repository")
	assert.Contains(t, err.Error(), "service-a")
	assert.Contains(t, err.Error(), "service-b")

	var depErr *DependencyError
	assert.True(t, errors.As(err, &depErr))
	assert.Equal(t, []string{"service-a", "service-b"}, depErr.Path)
}

func TestCycleError(t *testing.T) {
	err := NewCycleError([]string{"service-a", "service-b", "service-c"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "service-a -> service-b -> service-c -> service-a")

	var cycleErr *CycleError
	assert.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"service-a", "service-b", "service-c"}, cycleErr.Members)
}

func TestPreflightError(t *testing.T) {
	err := NewPreflightError([]string{"working tree is dirty", "not on main branch"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "working tree is dirty")
	assert.Contains(t, err.Error(), "not on main branch")

	var pfErr *PreflightError
	assert.True(t, errors.As(err, &pfErr))
	assert.Len(t, pfErr.Failures, 2)
}

func TestPublishError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := NewPublishError("service-a", "build", cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "service-a")
	assert.Contains(t, err.Error(), "build")
	assert.Contains(t, err.Error(), "exit status 1")

	var pubErr *PublishError
	assert.True(t, errors.As(err, &pubErr))
	assert.Equal(t, "service-a", pubErr.Repository)
	assert.Equal(t, "build", pubErr.Stage)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("registry unreachable", cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registry unreachable")
	assert.Contains(t, err.Error(), "connection refused")

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestExitCodeError(t *testing.T) {
	err := NewExitCodeError(1, "command failed")

	assert.Error(t, err)
	assert.Equal(t, "command failed", err.Error())

	var exitErr *ExitCodeError
	assert.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, "command failed", exitErr.Message)
	assert.Nil(t, exitErr.Cause)
	assert.Nil(t, exitErr.Unwrap())
}

func TestExitCodeErrorWithCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewExitCodeErrorWithCause(2, "command failed", cause)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")
	assert.Contains(t, err.Error(), "underlying failure")

	var exitErr *ExitCodeError
	assert.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, cause, exitErr.Cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestExitCodeErrorWithNilCause(t *testing.T) {
	err := NewExitCodeErrorWithCause(1, "no cause", nil)

	assert.Error(t, err)
	assert.Equal(t, "no cause", err.Error())

	var exitErr *ExitCodeError
	assert.True(t, errors.As(err, &exitErr))
	assert.Nil(t, exitErr.Unwrap())
}
