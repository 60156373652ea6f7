package app

import "errors"

// ErrNotFound and related errors describe lookup and authorization failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)
