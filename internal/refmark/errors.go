// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import "errors"

// Name errors
var (
	// ErrMalformedName indicates that an annotation name does not follow the
	// reference-mark wire format.
	ErrMalformedName = errors.New("malformed reference mark name")

	// ErrInvalidKey indicates a citation key that cannot be encoded in a name
	// (it contains whitespace or a comma).
	ErrInvalidKey = errors.New("invalid citation key")

	// ErrInvalidNumber indicates a citation number below 1.
	ErrInvalidNumber = errors.New("invalid citation number")

	// ErrArity indicates that keys and numbers differ in length.
	ErrArity = errors.New("citation keys and numbers differ in length")
)

// Text errors
var (
	// ErrNoDigitRuns indicates display text without any number to replace.
	ErrNoDigitRuns = errors.New("citation text has no digit runs")
)

// Registry errors
var (
	// ErrNoKeys indicates a citation request without citation keys.
	ErrNoKeys = errors.New("no citation keys")

	// ErrMarkNotFound indicates that a reference mark is not registered.
	ErrMarkNotFound = errors.New("reference mark not found")
)
