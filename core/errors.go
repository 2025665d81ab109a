package core

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound is returned by the snapshot builder when the supplied
	// context path does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotADirectory is returned when the supplied context path exists but
	// is not a directory.
	ErrNotADirectory = errors.New("path is not a directory")

	// ErrPermission is returned when the context path exists but cannot be
	// read.
	ErrPermission = errors.New("path not readable")

	// ErrInvalidContextPath is returned when a context path argument is
	// empty or malformed.
	ErrInvalidContextPath = errors.New("invalid context path")

	// ErrContextPathMismatch is returned by shared stores when EnsureCatalog
	// is called with a second, different context path after the canonical
	// catalog is already built. The shared store is single-context-per-run.
	ErrContextPathMismatch = errors.New("shared catalog already built for a different context path")

	// ErrNoKnowledge is returned when no domain knowledge has been recorded
	// for the requested task identifier.
	ErrNoKnowledge = errors.New("no domain knowledge recorded for task")
)

// BuilderError wraps a failure from an external catalog or knowledge builder.
// The underlying error propagates unchanged via Unwrap; the core never
// swallows or retries a builder failure.
type BuilderError struct {
	// Kind identifies the failing builder ("catalog" or "knowledge").
	Kind string
	// ContextPath is the context path the build was running against.
	ContextPath string
	// Err is the builder's original error.
	Err error
}

// Error implements the error interface.
func (e *BuilderError) Error() string {
	return fmt.Sprintf("%s builder failed for %s: %v", e.Kind, e.ContextPath, e.Err)
}

// Unwrap exposes the builder's original error to errors.Is / errors.As.
func (e *BuilderError) Unwrap() error { return e.Err }

// NewCatalogBuilderError wraps a catalog builder failure.
func NewCatalogBuilderError(contextPath string, err error) *BuilderError {
	return &BuilderError{Kind: "catalog", ContextPath: contextPath, Err: err}
}

// NewKnowledgeBuilderError wraps a knowledge builder failure.
func NewKnowledgeBuilderError(contextPath string, err error) *BuilderError {
	return &BuilderError{Kind: "knowledge", ContextPath: contextPath, Err: err}
}
