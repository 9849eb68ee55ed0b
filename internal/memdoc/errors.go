// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memdoc

import "errors"

// Annotation errors
var (
	// ErrAnnotationNotFound indicates that no annotation has the given name.
	ErrAnnotationNotFound = errors.New("annotation not found")

	// ErrDuplicateAnnotation indicates that an annotation name is taken.
	ErrDuplicateAnnotation = errors.New("annotation name already in use")
)

// Position errors
var (
	// ErrInvalidPosition indicates a paragraph index or offset out of bounds.
	ErrInvalidPosition = errors.New("position out of bounds")

	// ErrDetached indicates a handle whose text was removed from the document.
	ErrDetached = errors.New("handle no longer in document")

	// ErrForeignHandle indicates a handle that belongs to another document.
	ErrForeignHandle = errors.New("handle does not belong to this document")
)
