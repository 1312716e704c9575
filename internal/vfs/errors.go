package vfs

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound indicates a virtual path doesn't exist
	ErrNotFound = errors.New("no such file or directory")

	// ErrIsDirectory indicates a file operation on a directory
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotDirectory indicates a directory operation on a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrReadOnly indicates a write through a read-only view
	ErrReadOnly = errors.New("read-only file system")

	// ErrEscapesRoot indicates a path that resolves outside the scratch area
	ErrEscapesRoot = errors.New("path escapes scratch root")
)

// Error wraps a failed VFS operation with the operation name and the
// virtual path it was applied to.
type Error struct {
	Op   string // Operation that failed (e.g., "read", "write")
	Path string // Virtual path
	Err  error  // Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error, translating common io/fs errors into the
// package sentinels so callers can match with errors.Is.
func NewError(op, path string, err error) *Error {
	if errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return &Error{Op: op, Path: path, Err: err}
}

// Operation names used in errors and logs
const (
	OpRead  = "read"
	OpWrite = "write"
	OpStat  = "stat"
	OpIndex = "index"
	OpOpen  = "open"
	OpList  = "list"
)
