// Package shared contains the error kinds and domain events used across the
// progress engine. Events depend on google/uuid for their IDs; nothing else is imported.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds for errors.Is() checking.
var (
	// Storage errors
	ErrStorage      = errors.New("ledger store failure")
	ErrCorruptValue = errors.New("malformed persisted value")

	// Validation errors
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrEmptyValue    = errors.New("value cannot be empty")

	// Lookup errors
	ErrNotFound           = errors.New("entity not found")
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrUnknownAction      = errors.New("unknown action type")

	// Authorization errors
	ErrForbidden = errors.New("forbidden")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "stars", "growth", "usage"
	Op      string // Operation that failed, e.g., "Credit", "RecordAction"
	Kind    error  // Base error kind for errors.Is()
	Message string
	Err     error // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error, or the kind when there is none.
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches both the kind and the underlying error.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// StorageError wraps a store failure for the given domain operation.
func StorageError(domain, op string, err error) *DomainError {
	return WrapError(domain, op, ErrStorage, "store access failed", err)
}

// IsStorage reports a store I/O failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsCorrupt reports a malformed persisted value.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptValue)
}

// IsValidation reports caller misuse.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrUnknownAchievement)
}
