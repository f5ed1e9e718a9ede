// Package pkg holds the utilities shared by every layer.
// This file defines the domain-level errors.
//
// Services return (or wrap) these sentinels and the handler layer maps them
// to HTTP status codes, so callers compare with errors.Is instead of
// matching strings:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	// ErrConflict signals a state that changed underneath the caller,
	// e.g. a request that was already approved by someone else.
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal error")
)
