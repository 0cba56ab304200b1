package domain

import "fmt"

// ValidationError reports a missing or malformed input. Nothing has been
// mutated when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DuplicateKeyError reports a uniqueness-constraint violation detected at
// the store boundary (not pre-checked, to avoid races).
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s '%s' already registered", e.Field, e.Value)
}

// NotFoundError reports that a referenced entity does not exist, or that a
// delete affected zero rows.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports an operation that violates the availability
// invariant: renting an unavailable vehicle or returning a vehicle with no
// open rental.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// StoreError wraps a persistence failure that is none of the recoverable
// kinds above. The triggering transaction has been rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
