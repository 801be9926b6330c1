// Package apperr defines the error taxonomy shared by the store, the flow
// engine and the outward surfaces (control API, CLI).
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups of unknown accounts, proxies or flows.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks rejected user input. No state is mutated.
	ErrValidation = errors.New("validation failed")
	// ErrState marks internal consistency failures, typically a race between
	// a snapshot and the write that follows it.
	ErrState = errors.New("inconsistent state")
	// ErrLock marks a critical section that panicked while holding a lock.
	ErrLock = errors.New("state lock failed")
)

// NotFoundError names the kind of entity that could not be found.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NotFound builds a NotFoundError for kind/id.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError carries a field-specific message.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// StateError describes an invariant failure discovered at runtime.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string {
	return e.Msg
}

func (e *StateError) Unwrap() error {
	return ErrState
}

// Inconsistent builds a StateError.
func Inconsistent(msg string) error {
	return &StateError{Msg: msg}
}

// LockError wraps a value recovered from a panic inside a locked section.
type LockError struct {
	Lock      string
	Recovered any
}

func (e *LockError) Error() string {
	return fmt.Sprintf("State lock poisoned (%s): %v", e.Lock, e.Recovered)
}

func (e *LockError) Unwrap() error {
	return ErrLock
}
