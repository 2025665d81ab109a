package core

import "context"

// CatalogBuilder constructs a Catalog from a directory snapshot. Builders are
// supplied by the surrounding agent system and are treated as opaque,
// fallible and possibly slow (typically a model-backed exploration of the
// snapshot's files). The coordination core guarantees at most one invocation
// per unique input when accessed through its caches.
//
// Implementations must respect context cancellation; the core itself imposes
// no timeout or retry policy.
type CatalogBuilder interface {
	BuildCatalog(ctx context.Context, snapshot *DirectorySnapshot) (*Catalog, error)
}

// CatalogBuilderFunc adapts a plain function to the CatalogBuilder interface.
type CatalogBuilderFunc func(ctx context.Context, snapshot *DirectorySnapshot) (*Catalog, error)

// BuildCatalog invokes the wrapped function.
func (f CatalogBuilderFunc) BuildCatalog(ctx context.Context, snapshot *DirectorySnapshot) (*Catalog, error) {
	return f(ctx, snapshot)
}

// KnowledgeBuilder derives domain knowledge for one query from a catalog.
// The critical slice is the catalog's critical-source subset, recomputed for
// every call: reading critical sources is a per-query obligation independent
// of catalog staleness.
type KnowledgeBuilder interface {
	BuildKnowledge(ctx context.Context, catalog *Catalog, query string, critical []CatalogFile) (*DomainKnowledge, error)
}

// KnowledgeBuilderFunc adapts a plain function to the KnowledgeBuilder interface.
type KnowledgeBuilderFunc func(ctx context.Context, catalog *Catalog, query string, critical []CatalogFile) (*DomainKnowledge, error)

// BuildKnowledge invokes the wrapped function.
func (f KnowledgeBuilderFunc) BuildKnowledge(ctx context.Context, catalog *Catalog, query string, critical []CatalogFile) (*DomainKnowledge, error) {
	return f(ctx, catalog, query, critical)
}
