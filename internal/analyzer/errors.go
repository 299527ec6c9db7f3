package analyzer

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy of analyzer calls.
type ErrorCategory string

const (
	ErrorTimeout          ErrorCategory = "timeout"
	ErrorBadData          ErrorCategory = "bad_data"
	ErrorAuthentication   ErrorCategory = "authentication"
	ErrorOutage           ErrorCategory = "outage"
	ErrorContractMismatch ErrorCategory = "contract_mismatch"
	ErrorNotFound         ErrorCategory = "not_found"
	ErrorRateLimited      ErrorCategory = "rate_limited"
	ErrorInternal         ErrorCategory = "internal"
)

// Error wraps analyzer failures with a normalized category.
type Error struct {
	Category      ErrorCategory
	FileReference string
	Message       string
	Underlying    error
	Retryable     bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("analyzer [%s] %s: %s: %v", e.Category, e.FileReference, e.Message, e.Underlying)
	}
	return fmt.Sprintf("analyzer [%s] %s: %s", e.Category, e.FileReference, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func NewError(category ErrorCategory, fileRef, message string, underlying error) *Error {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &Error{
		Category:      category,
		FileReference: fileRef,
		Message:       message,
		Underlying:    underlying,
		Retryable:     retryable,
	}
}

// IsRetryable checks if an error is worth retrying at the caller.
func IsRetryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return false
}

// CategoryOf extracts the category, ErrorInternal for foreign errors.
func CategoryOf(err error) ErrorCategory {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Category
	}
	return ErrorInternal
}

// ErrCircuitOpen is the underlying error while the breaker rejects calls.
var ErrCircuitOpen = errors.New("analyzer circuit open")
