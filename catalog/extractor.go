package catalog

import (
	"context"
	"time"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
)

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// Extractor coordinates per-query domain-knowledge extraction on top of an
// agent-scoped Cache. The catalog used for a query comes from one of three
// places, in order: an explicitly passed catalog (manual passing mode, cache
// bypassed entirely), the cache, or a fresh build through the cache.
type Extractor struct {
	cache     *Cache
	catalogs  core.CatalogBuilder
	knowledge core.KnowledgeBuilder
	logger    logging.Logger
}

// NewExtractor constructs an Extractor bound to a cache and the two external
// builders.
func NewExtractor(cache *Cache, catalogBuilder core.CatalogBuilder, knowledgeBuilder core.KnowledgeBuilder, optFns ...func(o *ExtractorOptions)) *Extractor {
	opts := ExtractorOptions{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Extractor{cache: cache, catalogs: catalogBuilder, knowledge: knowledgeBuilder, logger: opts.Logger}
}

// ExtractDomainKnowledge derives domain knowledge for query against
// contextPath. If cat is non-nil it is used as-is; otherwise the extractor
// consults the cache (building the catalog on a miss, without force refresh).
//
// The critical-source subset is recomputed from the catalog on every call,
// cached or not: reading critical sources is a per-query obligation separate
// from catalog staleness. Builder failures propagate unchanged and are never
// cached as negative results.
func (e *Extractor) ExtractDomainKnowledge(ctx context.Context, query, contextPath string, cat *core.Catalog) (*core.DomainKnowledge, error) {
	if cat == nil {
		built, err := e.cache.GetOrBuild(ctx, contextPath, false, e.catalogs)
		if err != nil {
			return nil, err
		}
		cat = built
	} else {
		e.logger.Debug("using caller supplied catalog", "ctx_path", contextPath)
	}

	critical := cat.CriticalSources()

	start := time.Now()
	knowledge, err := e.knowledge.BuildKnowledge(ctx, cat, query, critical)
	if err != nil {
		e.logger.Error("knowledge build failed", "ctx_path", contextPath, "query", query, "duration", time.Since(start), "error", err)
		return nil, core.NewKnowledgeBuilderError(contextPath, err)
	}

	e.logger.Info("domain knowledge extracted", "ctx_path", contextPath, "query", query, "critical_sources", len(critical), "duration", time.Since(start))

	return knowledge, nil
}

// Cache exposes the underlying agent-scoped cache.
func (e *Extractor) Cache() *Cache { return e.cache }
