// Package datamesh provides a high-level façade over the catalog cache and
// shared-state coordination services (snapshots, catalogs, domain knowledge
// & logging) for multi-worker data-analysis runs. Most applications interact
// with this package by:
//  1. Creating a DataMesh via New() with their catalog and knowledge builders
//     (optionally overriding the default in-memory shared store)
//  2. Submitting tasks against a context directory (SolveTask, SolveTasks)
//  3. Reading back the canonical catalog, per-task domain knowledge and the
//     execution history
//
// The façade delegates coordination to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply a
// durable store implementation and a structured logger.
package datamesh

import (
	"context"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
	"github.com/hupe1980/datamesh/orchestrator"
	"github.com/hupe1980/datamesh/snapshot"
)

// Options configures the DataMesh instance.
type Options struct {
	// Concurrency limits the number of tasks that can execute
	// simultaneously; it is also the size of the worker pool.
	Concurrency int

	// MaxBuilds caps builder invocations (catalog + knowledge) across the
	// whole run. Builds are typically model-backed and expensive. Set to 0
	// for unlimited.
	MaxBuilds int

	// MaxSnapshotDepth controls how many directory levels the snapshot
	// helper expands below the context path.
	MaxSnapshotDepth int

	// Store holds the run's shared state (defaults to an in-memory
	// implementation if not provided).
	Store core.SharedStateStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// DataMesh is the high-level façade aggregating the orchestrator and the
// directory snapshot service.
type DataMesh struct {
	opts         Options
	snapshots    *snapshot.Builder
	orchestrator *orchestrator.Orchestrator
}

// New creates a new DataMesh instance around the caller's two builders,
// with optional overrides. An unset store is initialized with an in-memory
// implementation.
func New(catalogBuilder core.CatalogBuilder, knowledgeBuilder core.KnowledgeBuilder, optFns ...func(o *Options)) *DataMesh {
	opts := Options{
		Concurrency: 4,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	o := orchestrator.New(catalogBuilder, knowledgeBuilder, func(oo *orchestrator.Options) {
		oo.Concurrency = opts.Concurrency
		oo.MaxBuilds = opts.MaxBuilds
		oo.Store = opts.Store
		oo.Logger = opts.Logger
	})

	snapshots := snapshot.NewBuilder(func(so *snapshot.Options) {
		so.MaxDepth = opts.MaxSnapshotDepth
		so.Logger = opts.Logger
	})

	return &DataMesh{opts: opts, snapshots: snapshots, orchestrator: o}
}

// RunID returns the run identifier generated at construction time.
func (m *DataMesh) RunID() string { return m.orchestrator.RunID() }

// SnapshotDirectory takes a deterministic read-only snapshot of the
// directory at path without touching any cache or store.
func (m *DataMesh) SnapshotDirectory(path string) (*core.DirectorySnapshot, error) {
	return m.snapshots.Build(path)
}

// SolveTask runs a single task against contextPath on a pooled worker.
func (m *DataMesh) SolveTask(ctx context.Context, task core.Task, contextPath string) (core.ExecutionResult, error) {
	return m.orchestrator.SolveTask(ctx, task, contextPath)
}

// SolveTasks fans tasks out with bounded parallelism. Per-task failures are
// reported through the returned results rather than the error.
func (m *DataMesh) SolveTasks(ctx context.Context, tasks []core.Task, contextPath string) ([]core.ExecutionResult, error) {
	return m.orchestrator.SolveTasks(ctx, tasks, contextPath)
}

// SharedCatalog returns the run's canonical catalog, if built.
func (m *DataMesh) SharedCatalog() (*core.Catalog, bool) {
	return m.orchestrator.SharedCatalog()
}

// DomainKnowledge returns the recorded knowledge for taskID.
func (m *DataMesh) DomainKnowledge(taskID string) (*core.DomainKnowledge, error) {
	return m.orchestrator.DomainKnowledge(taskID)
}

// AllDomainKnowledge returns a copy of the task-to-knowledge mapping.
func (m *DataMesh) AllDomainKnowledge() map[string]*core.DomainKnowledge {
	return m.orchestrator.AllDomainKnowledge()
}

// ExecutionResults returns the run's execution history so far.
func (m *DataMesh) ExecutionResults() []core.ExecutionResult {
	return m.orchestrator.ExecutionResults()
}
