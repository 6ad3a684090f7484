// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package jfilter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is reported when the input violates the JSON grammar.
	// All syntax errors wrap this error.
	ErrMalformed = errors.New("malformed input")

	// ErrNotReady is reported by Value if the parser has not completed a value.
	ErrNotReady = errors.New("value is not ready")

	// ErrInProgress is reported by SetFilter if parsing has already begun.
	ErrInProgress = errors.New("parse in progress")
)

// SyntaxError is the concrete type of errors reported for malformed input.
type SyntaxError struct {
	Location Pos
	Message  string
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping. A SyntaxError always wraps ErrMalformed.
func (s *SyntaxError) Unwrap() error { return ErrMalformed }
