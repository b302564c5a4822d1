// Package apperr defines sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrRootNotFound    = errors.New("document root not found")
	ErrUnknownCategory = errors.New("unknown category")
	// ErrValidationFailed is returned when a scan finds at least one error.
	ErrValidationFailed = errors.New("metadata errors found")
)
