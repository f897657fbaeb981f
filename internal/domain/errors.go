package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder or record was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure or a bad action token
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates a missing capability
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is allows errors.Is() to match the typed errors against the sentinels
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotEmpty     = errors.New("folder is not empty")
	ErrStoreFailure = errors.New("record store failure")
)

// NotEmptyError reports a folder delete blocked by existing members
type NotEmptyError struct {
	FolderID    string
	MemberCount int
}

func (e *NotEmptyError) Error() string {
	if e.MemberCount > 0 {
		return fmt.Sprintf("folder %s still has %d record(s)", e.FolderID, e.MemberCount)
	}
	return fmt.Sprintf("folder %s still has records", e.FolderID)
}

func (e *NotEmptyError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrNotEmpty
func (e *NotEmptyError) Is(target error) bool { return target == ErrNotEmpty }

// StoreFailureError wraps a failed Record Store operation
type StoreFailureError struct {
	Op  string // duplicate, trash, restore
	Err error
}

func (e *StoreFailureError) Error() string {
	return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err)
}

func (e *StoreFailureError) Unwrap() error { return e.Err }

func (e *StoreFailureError) StatusCode() int { return http.StatusBadGateway }

// Is allows errors.Is() to match against ErrStoreFailure
func (e *StoreFailureError) Is(target error) bool { return target == ErrStoreFailure }
