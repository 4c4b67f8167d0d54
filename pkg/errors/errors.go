// Package errors defines the error vocabulary shared across the pipeline:
// sentinels for soft-degradation decisions, a ValidationError for fatal
// configuration problems, and thin wrap helpers so callers never import
// both this package and the stdlib errors package.
package errors

import (
	"errors"
	"fmt"
)

// Generic sentinels used across layers.
var (
	// ErrNotFound signals an empty lookup, such as an archive with no
	// reports yet. Handlers map it to 404, services to a skip.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput marks a caller-supplied value that fails a
	// precondition (missing API key, empty prompt, bad enum).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal marks a broken invariant inside the process itself.
	ErrInternal = errors.New("internal error")

	// ErrUnavailable marks a dependency that is reachable but refusing work.
	ErrUnavailable = errors.New("service unavailable")
)

// Pipeline sentinels. These are soft by contract: a report run logs them
// and degrades the affected section, it never aborts on them.
var (
	// ErrInsufficientData: the series is shorter than the computation
	// requires. The owning component returns an explicit "no data" result.
	ErrInsufficientData = errors.New("insufficient data for computation")

	// ErrEmptyCorpus: the selected window contains no quotes at all.
	ErrEmptyCorpus = errors.New("quote corpus is empty")

	// ErrNoCalibration: no calibration artifact has been stored yet, the
	// scorer falls back to prior weights.
	ErrNoCalibration = errors.New("no calibration artifact available")

	// ErrStaleCalibration: the stored artifact is older than the configured
	// maximum age. Informational only, the artifact is still used.
	ErrStaleCalibration = errors.New("calibration artifact is stale")
)

// Ingestion sentinels, raised while validating consumed messages.
var (
	ErrInvalidCategory  = errors.New("unknown quote category")
	ErrInvalidIntensity = errors.New("unknown quote intensity")
	ErrMalformedPayload = errors.New("malformed ingest payload")
)

// ValidationError carries the offending field and value so startup failures
// name exactly which environment variable to fix.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Is reports whether err is or wraps target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message, preserving the chain. Nil passes
// through so call sites can wrap unconditionally.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// New creates an ad-hoc error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates an ad-hoc formatted error.
func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
