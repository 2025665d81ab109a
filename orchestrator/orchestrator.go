package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
	"github.com/hupe1980/datamesh/state"
	"github.com/hupe1980/datamesh/worker"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// Concurrency is the number of pooled workers and the parallelism cap
	// for SolveTasks.
	Concurrency int
	// MaxBuilds limits builder invocations across the whole run. Zero means
	// unlimited.
	MaxBuilds int
	// Store holds the run's shared state. Defaults to an in-memory store.
	Store core.SharedStateStore
	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// Orchestrator fans tasks out over a pool of workers that share one state
// store. Public methods are safe for concurrent use.
type Orchestrator struct {
	runID       string
	concurrency int
	store       core.SharedStateStore
	logger      logging.Logger

	workers []*worker.Worker
	pool    chan *worker.Worker
}

// New constructs an Orchestrator with optional overrides. The worker pool
// is created up front; each worker keeps its own catalog cache while the
// shared store guarantees at most one canonical catalog build per run.
func New(catalogBuilder core.CatalogBuilder, knowledgeBuilder core.KnowledgeBuilder, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Concurrency: 4,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Store == nil {
		opts.Store = state.NewInMemoryStore(func(o *state.Options) { o.Logger = opts.Logger })
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	var limiter *core.BuildLimiter
	if opts.MaxBuilds > 0 {
		limiter = core.NewBuildLimiter(opts.MaxBuilds)
	}

	runID := uuid.NewString()

	workers := make([]*worker.Worker, 0, opts.Concurrency)
	pool := make(chan *worker.Worker, opts.Concurrency)
	for i := 0; i < opts.Concurrency; i++ {
		w := worker.New(opts.Store, catalogBuilder, knowledgeBuilder, func(o *worker.Options) {
			o.ID = fmt.Sprintf("worker-%d", i+1)
			o.Limiter = limiter
			o.Logger = opts.Logger
		})
		workers = append(workers, w)
		pool <- w
	}

	return &Orchestrator{
		runID:       runID,
		concurrency: opts.Concurrency,
		store:       opts.Store,
		logger:      opts.Logger,
		workers:     workers,
		pool:        pool,
	}
}

// RunID returns the identifier generated for this orchestrator's run.
func (o *Orchestrator) RunID() string { return o.runID }

// Store exposes the run's shared state store.
func (o *Orchestrator) Store() core.SharedStateStore { return o.store }

// Workers returns the pooled workers, mostly for inspection in tests.
func (o *Orchestrator) Workers() []*worker.Worker { return o.workers }

// SolveTask executes a single task on a pooled worker. The task outcome is
// recorded in the shared store either way; the error mirrors what the
// worker reported so single-task callers can react directly.
func (o *Orchestrator) SolveTask(ctx context.Context, task core.Task, contextPath string) (core.ExecutionResult, error) {
	select {
	case <-ctx.Done():
		return core.ExecutionResult{}, ctx.Err()
	case w := <-o.pool:
		defer func() { o.pool <- w }()
		return w.RunTask(ctx, task, contextPath)
	}
}

// SolveTasks fans tasks out across the worker pool with at most Concurrency
// tasks in flight. Individual task failures do not abort the run: they are
// captured in the returned results (and the store's execution history) with
// TaskStatusFailed. The error return is reserved for run-level failures
// such as context cancellation.
//
// Results are returned in task order regardless of completion order.
func (o *Orchestrator) SolveTasks(ctx context.Context, tasks []core.Task, contextPath string) ([]core.ExecutionResult, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	start := time.Now()
	o.logger.Info("run started", "run_id", o.runID, "tasks", len(tasks), "concurrency", o.concurrency)

	results := make([]core.ExecutionResult, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case w := <-o.pool:
				defer func() { o.pool <- w }()

				result, err := w.RunTask(gctx, task, contextPath)
				if err != nil {
					o.logger.Warn("task failed", "run_id", o.runID, "task_id", result.TaskID, "worker_id", w.ID(), "error", err)
				}
				results[i] = result

				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("run %s aborted: %w", o.runID, err)
	}

	o.logger.Info("run finished", "run_id", o.runID, "tasks", len(tasks), "duration", time.Since(start))

	return results, nil
}

// SharedCatalog returns the run's canonical catalog, if one has been built.
func (o *Orchestrator) SharedCatalog() (*core.Catalog, bool) {
	return o.store.SharedCatalog()
}

// DomainKnowledge returns the recorded knowledge for taskID.
func (o *Orchestrator) DomainKnowledge(taskID string) (*core.DomainKnowledge, error) {
	return o.store.DomainKnowledge(taskID)
}

// AllDomainKnowledge returns a copy of the full task-to-knowledge mapping.
func (o *Orchestrator) AllDomainKnowledge() map[string]*core.DomainKnowledge {
	return o.store.AllDomainKnowledge()
}

// ExecutionResults returns the run's execution history so far.
func (o *Orchestrator) ExecutionResults() []core.ExecutionResult {
	return o.store.ExecutionResults()
}
