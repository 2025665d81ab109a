package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/datamesh/catalog"
	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
)

// Options configures a Worker.
type Options struct {
	// ID identifies the worker in logs and execution results. Defaults to a
	// generated identifier.
	ID string

	// Cache overrides the worker's agent-scoped catalog cache. Defaults to
	// a fresh single-slot cache; workers never share caches.
	Cache *catalog.Cache

	// Limiter caps expensive builder invocations made through this worker.
	// Nil means unlimited.
	Limiter *core.BuildLimiter

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// Worker is one task processor in a run. It owns its private catalog cache
// and reads/writes run-wide state exclusively through the shared store
// handle injected at construction time.
type Worker struct {
	id        string
	cache     *catalog.Cache
	extractor *catalog.Extractor
	catalogs  core.CatalogBuilder
	shared    core.SharedStateStore
	logger    logging.Logger
}

// New constructs a Worker bound to the run's shared store and the two
// external builders.
func New(shared core.SharedStateStore, catalogBuilder core.CatalogBuilder, knowledgeBuilder core.KnowledgeBuilder, optFns ...func(o *Options)) *Worker {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ID == "" {
		opts.ID = fmt.Sprintf("worker-%s", uuid.NewString()[:8])
	}
	if opts.Cache == nil {
		opts.Cache = catalog.NewCache(func(o *catalog.Options) { o.Logger = opts.Logger })
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	catalogs := catalogBuilder
	knowledge := knowledgeBuilder
	if opts.Limiter != nil {
		catalogs = limitedCatalogBuilder{builder: catalogBuilder, limiter: opts.Limiter}
		knowledge = limitedKnowledgeBuilder{builder: knowledgeBuilder, limiter: opts.Limiter}
	}

	return &Worker{
		id:        opts.ID,
		cache:     opts.Cache,
		extractor: catalog.NewExtractor(opts.Cache, catalogs, knowledge, func(o *catalog.ExtractorOptions) { o.Logger = opts.Logger }),
		catalogs:  catalogs,
		shared:    shared,
		logger:    opts.Logger,
	}
}

// ID returns the worker identifier.
func (w *Worker) ID() string { return w.id }

// Cache exposes the worker's agent-scoped catalog cache.
func (w *Worker) Cache() *catalog.Cache { return w.cache }

// CatalogDataSources returns the catalog for contextPath through the
// worker's own cache, building it when forced or missing. This is the
// agent-scoped path: the shared store is not consulted.
func (w *Worker) CatalogDataSources(ctx context.Context, contextPath string, forceRefresh bool) (*core.Catalog, error) {
	return w.cache.GetOrBuild(ctx, contextPath, forceRefresh, w.catalogs)
}

// HasCatalog reports whether the worker's cache holds a catalog for exactly
// this context path.
func (w *Worker) HasCatalog(contextPath string) bool { return w.cache.Has(contextPath) }

// PeekCatalog returns the worker's cached catalog, if any, without mutating
// the cache.
func (w *Worker) PeekCatalog() (*core.Catalog, bool) { return w.cache.Peek() }

// ExtractDomainKnowledge derives domain knowledge for query against
// contextPath. A non-nil cat bypasses the cache entirely.
func (w *Worker) ExtractDomainKnowledge(ctx context.Context, query, contextPath string, cat *core.Catalog) (*core.DomainKnowledge, error) {
	return w.extractor.ExtractDomainKnowledge(ctx, query, contextPath, cat)
}

// sharedCatalog resolves the catalog for contextPath using the two-layer
// protocol: own cache first, then the shared store (at-most-one build per
// run), writing the shared result back into the worker's cache.
func (w *Worker) sharedCatalog(ctx context.Context, contextPath string) (*core.Catalog, error) {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return nil, err
	}

	if cat, ok := w.cache.Get(path); ok {
		return cat, nil
	}

	cat, err := w.shared.EnsureCatalog(ctx, path, w.catalogs)
	if err != nil {
		return nil, err
	}
	if err := w.cache.Put(path, cat); err != nil {
		return nil, err
	}

	return cat, nil
}

// RunTask executes one task end to end: resolve the canonical catalog,
// extract domain knowledge for the task's query, and record both the
// knowledge and an execution result in the shared store. The returned
// result mirrors what was recorded; on failure the error is also returned
// so callers can surface it as a task failure.
func (w *Worker) RunTask(ctx context.Context, task core.Task, contextPath string) (core.ExecutionResult, error) {
	if task.ID == "" {
		task.ID = fmt.Sprintf("task-%s", uuid.NewString()[:8])
	}

	start := time.Now()
	result := core.ExecutionResult{
		ID:       uuid.NewString(),
		TaskID:   task.ID,
		WorkerID: w.id,
		Started:  start,
	}

	fail := func(err error) (core.ExecutionResult, error) {
		result.Status = core.TaskStatusFailed
		result.Error = err.Error()
		result.Duration = time.Since(start)
		if recErr := w.shared.RecordExecutionResult(result); recErr != nil {
			w.logger.Error("recording failed execution result", "task_id", task.ID, "error", recErr)
		}
		w.logger.Error("task failed", "task_id", task.ID, "duration", result.Duration, "error", err)
		return result, err
	}

	cat, err := w.sharedCatalog(ctx, contextPath)
	if err != nil {
		return fail(err)
	}

	knowledge, err := w.extractor.ExtractDomainKnowledge(ctx, task.Query, contextPath, cat)
	if err != nil {
		return fail(err)
	}
	if knowledge.TaskID == "" {
		knowledge.TaskID = task.ID
	}

	if err := w.shared.RecordDomainKnowledge(task.ID, knowledge); err != nil {
		return fail(err)
	}

	result.Status = core.TaskStatusCompleted
	result.Output = knowledge.Response
	result.Duration = time.Since(start)
	if err := w.shared.RecordExecutionResult(result); err != nil {
		return fail(err)
	}

	w.logger.Info("task completed", "task_id", task.ID, "duration", result.Duration)

	return result, nil
}

// limitedCatalogBuilder charges every catalog build against a BuildLimiter
// before delegating.
type limitedCatalogBuilder struct {
	builder core.CatalogBuilder
	limiter *core.BuildLimiter
}

func (b limitedCatalogBuilder) BuildCatalog(ctx context.Context, snap *core.DirectorySnapshot) (*core.Catalog, error) {
	if err := b.limiter.Increment(); err != nil {
		return nil, err
	}
	return b.builder.BuildCatalog(ctx, snap)
}

// limitedKnowledgeBuilder charges every knowledge build against a
// BuildLimiter before delegating.
type limitedKnowledgeBuilder struct {
	builder core.KnowledgeBuilder
	limiter *core.BuildLimiter
}

func (b limitedKnowledgeBuilder) BuildKnowledge(ctx context.Context, cat *core.Catalog, query string, critical []core.CatalogFile) (*core.DomainKnowledge, error) {
	if err := b.limiter.Increment(); err != nil {
		return nil, err
	}
	return b.builder.BuildKnowledge(ctx, cat, query, critical)
}
