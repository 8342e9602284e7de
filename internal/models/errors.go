package models

import "fmt"

// FetchError is a network or vendor-API failure for a single item. It is
// non-fatal to the session: siblings continue processing.
type FetchError struct {
	LCSCID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s: %v", e.LCSCID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed document. For persisted XML it is fatal to
// load; for a vendor payload it is per-item.
type ParseError struct {
	Source string // file path or vendor id
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is invalid geometry or missing required fields in an
// otherwise well-formed payload. Per-item.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError is an id collision with differing content between a
// staged entry and an existing or previously staged one. It aborts the
// conflicting item only.
type ConflictError struct {
	Kind string // "package" or "part"
	ID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s already staged or persisted with different content", e.Kind, e.ID)
}

// LockedError means another session holds the configuration directory
// lock. Commit and restore fail fast with it rather than blocking.
type LockedError struct {
	Path      string
	SessionID string
	PID       int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("configuration locked by session %s (pid %d): %s", e.SessionID, e.PID, e.Path)
}

// IOError is a filesystem failure during snapshot, write, or restore.
// The transaction it aborts guarantees persisted files are unchanged.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
