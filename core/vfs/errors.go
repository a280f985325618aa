package vfs

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrBusy indicates a lock upgrade cannot be satisfied right now.
	// It is routine, not fatal; the host engine owns retry policy.
	ErrBusy = errors.New("busy")
	// ErrNotFound indicates a backend or file was not found
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a backend or file already exists
	ErrAlreadyExists = errors.New("already exists")
	// ErrIO indicates a backend I/O failure
	ErrIO = errors.New("i/o error")
	// ErrShortRead indicates a read that ran past end-of-file
	ErrShortRead = errors.New("short read")
	// ErrClosed indicates use of a closed handle
	ErrClosed = errors.New("file already closed")
	// ErrLockProtocol indicates an illegal lock transition request,
	// a programming-contract violation rather than contention
	ErrLockProtocol = errors.New("lock protocol violation")
)

// DuplicateNameError reports an attempt to register a backend under a name
// that is already taken.
type DuplicateNameError struct {
	Name string // Backend name that collided
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("backend already registered: %s", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrAlreadyExists
}

// NotFoundError reports a lookup of a backend or file that does not exist.
type NotFoundError struct {
	Resource string // Type of resource ("backend", "file")
	Name     string // Name that was looked up
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Name)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IOError represents an I/O operation failure with context.
type IOError struct {
	Op   string // Operation being performed (e.g., "read", "write", "truncate")
	Name string // File name involved
	Err  error  // Underlying error, if any
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("failed to %s %s", e.Op, e.Name)
}

func (e *IOError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrIO
}

// LockError reports a failed lock transition with enough context for the
// caller to decide retry vs. abort.
type LockError struct {
	Name string    // File identity
	From LockLevel // Level held when the request was made
	To   LockLevel // Level requested
	Err  error     // ErrBusy for contention, ErrLockProtocol for misuse
}

func (e *LockError) Error() string {
	return fmt.Sprintf("cannot lock %s: %s -> %s: %v", e.Name, e.From, e.To, e.Err)
}

func (e *LockError) Unwrap() error {
	return e.Err
}
