package domain

import "errors"

// Auth errors
var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Tree and file errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrForbidden      = errors.New("access denied")
	ErrInvalidName    = errors.New("invalid name")
	ErrInvalidParent  = errors.New("invalid parent folder")
	ErrCycleDetected  = errors.New("operation would create a folder cycle")
	ErrFolderNotEmpty = errors.New("folder is not empty")
	ErrFileTooLarge   = errors.New("file exceeds maximum size")
)

// ErrStorageFailure wraps unreachable blob or metadata storage. Callers may
// retry with backoff.
var ErrStorageFailure = errors.New("storage failure")
