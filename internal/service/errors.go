package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers missing resources and missing nested parents.
	ErrNotFound = errors.New("not found")

	// ErrIdentityConflict fires when a signup pair collides with an
	// existing account under a different pairing.
	ErrIdentityConflict = errors.New("username or email already taken")

	// ErrReviewExists enforces one review per (author, title).
	ErrReviewExists = errors.New("you have already reviewed this title")

	// ErrInvalidCode covers wrong, expired and invalidated confirmation
	// codes.
	ErrInvalidCode = errors.New("invalid confirmation code, request a new one and try again")
)

// ValidationError carries field-keyed messages for 400 responses. Only
// messages leave the process; no internal identifiers.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, "; ")))
	}
	return strings.Join(parts, ", ")
}

// invalid builds a single-field ValidationError.
func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// add appends a message for field, allocating the map on first use.
func (e *ValidationError) add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
	return e
}

// orNil returns the error, or nil when no field failed.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
