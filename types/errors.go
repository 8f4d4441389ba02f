package types

import (
	"errors"
	"fmt"
)

// ValidationError rejects a bad request before any work is created.
// It is surfaced to the caller immediately and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorClass splits provider failures into retryable and not.
type ErrorClass int

const (
	ClassTransient ErrorClass = iota
	ClassPermanent
)

// ProviderError wraps a failure from an external provider with its retry
// classification and the operation that produced it.
type ProviderError struct {
	Op    string
	Class ErrorClass
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable provider failure (rate limit, timeout, 5xx).
func Transient(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Class: ClassTransient, Err: err}
}

// Permanent wraps err as a non-retryable provider failure (bad input, auth).
func Permanent(op string, err error) *ProviderError {
	return &ProviderError{Op: op, Class: ClassPermanent, Err: err}
}

// Sentinel provider failures named by the adapter contracts.
var (
	ErrProviderUnavailable     = errors.New("provider unavailable")
	ErrUnsupportedAudio        = errors.New("unsupported audio")
	ErrUnsupportedLanguagePair = errors.New("unsupported language pair")
)

// MediaToolError reports a non-zero exit from an external media tool,
// keeping the tail of stderr for diagnostics.
type MediaToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *MediaToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *MediaToolError) Unwrap() error { return e.Err }

// IsMediaTool reports whether err is (or wraps) a MediaToolError.
func IsMediaTool(err error) bool {
	var me *MediaToolError
	return errors.As(err, &me)
}

// IsTransient reports whether err should be retried. Media tool failures are
// not transient by classification; the runner gives them one retry of their own.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Class == ClassTransient
	}
	return false
}
