// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist or is not
// owned by the requesting user.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates a request carried a malformed or missing field.
var ErrValidation = errors.New("validation failed")

// ErrInvalidTransition indicates a task state change that violates the
// linear workflow (Not Started -> In Progress -> Completed).
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrConflict indicates a duplicate resource (e.g. username already taken).
var ErrConflict = errors.New("conflict: resource already exists")
