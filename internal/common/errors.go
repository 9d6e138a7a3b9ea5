// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Ingestion errors.
	ErrDecode       = errors.New("decode failed")
	ErrSchema       = errors.New("schema mismatch")
	ErrNoSources    = errors.New("no sources to ingest")
	ErrUnsupported  = errors.New("unsupported file type")
	ErrEmptySource  = errors.New("source contains no header row")
	ErrIngestBudget = errors.New("ingestion time budget exceeded")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// DecodeError reports that a source could not be turned into a table.
type DecodeError struct {
	Err    error
	Source string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrDecode) match any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewDecodeError wraps err as a decode failure of the named source.
func NewDecodeError(source string, err error) error {
	return &DecodeError{Source: source, Err: err}
}

// SchemaError reports canonical fields that are still missing after alias mapping.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrSchema) match any SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
