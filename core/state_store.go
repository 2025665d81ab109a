package core

import "context"

// SharedStateStore is the coordination point visible to all workers in a run.
// It owns the single canonical Catalog for a context path, a per-task mapping
// of DomainKnowledge, and the append-only execution history. Implementations
// must be safe for concurrent use; the catalog slot is the only structure
// requiring cross-worker synchronization.
//
// Workers access shared state exclusively through this contract. No caller is
// permitted to hold a long-lived mutable reference into the store; returned
// maps and slices are defensive copies.
type SharedStateStore interface {
	// SharedCatalog returns the canonical catalog for the current run, or
	// false if none has been built yet.
	SharedCatalog() (*Catalog, bool)

	// EnsureCatalog returns the canonical catalog, building it exactly once
	// via the supplied builder when the slot is empty. Concurrent callers
	// observing an in-flight build wait for it and share its outcome; a
	// failed build leaves the slot empty so a later call can retry. Calling
	// with a context path different from the one already built returns
	// ErrContextPathMismatch.
	EnsureCatalog(ctx context.Context, contextPath string, builder CatalogBuilder) (*Catalog, error)

	// DomainKnowledge returns the knowledge recorded for taskID or
	// ErrNoKnowledge if the slot is empty.
	DomainKnowledge(taskID string) (*DomainKnowledge, error)

	// AllDomainKnowledge returns a read-only copy of the full task-to-
	// knowledge mapping.
	AllDomainKnowledge() map[string]*DomainKnowledge

	// RecordDomainKnowledge inserts or overwrites the slot for taskID.
	// Overwrites are last-writer-wins; implementations should log a warning
	// rather than merge.
	RecordDomainKnowledge(taskID string, knowledge *DomainKnowledge) error

	// RecordExecutionResult appends to the ordered execution history.
	// Entries are never removed.
	RecordExecutionResult(result ExecutionResult) error

	// ExecutionResults returns a copy of the ordered execution history.
	ExecutionResults() []ExecutionResult
}
