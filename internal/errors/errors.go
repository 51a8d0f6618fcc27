package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess           = 0   // Indicates successful execution.
	ExitErrorGeneric      = 1   // Indicates a generic error.
	ExitErrorTimeout      = 2   // Indicates the operation timed out.
	ExitErrorConfig       = 4   // Indicates a configuration error.
	ExitErrorInvalidInput = 5   // Indicates the funnel inputs were rejected by the calculator.
	ExitErrorCanceled     = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrInvalidInput is the sentinel matched by every ValidationError.
// Callers use errors.Is(err, ErrInvalidInput) to recognise rejected inputs
// without caring which field was at fault.
var ErrInvalidInput = errors.New("invalid input")

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents a funnel input rejected by the calculator. It
// identifies which field failed validation and provides a human-readable
// explanation.
type ValidationError struct {
	// Field is the name of the input field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns the user-visible message, e.g. "average_ticket must be positive".
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Is reports whether target is ErrInvalidInput.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// TimeoutError represents an operation that exceeded its deadline. It captures
// the operation name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code that best describes it.
// A nil error maps to ExitSuccess.
func ExitCodeFor(err error) int {
	var configErr ConfigError
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidInput):
		return ExitErrorInvalidInput
	case errors.As(err, &configErr):
		return ExitErrorConfig
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
