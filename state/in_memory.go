package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
	"github.com/hupe1980/datamesh/snapshot"
)

// Options configures an InMemoryStore.
type Options struct {
	// Snapshots overrides the directory snapshot builder used for catalog
	// construction. Defaults to snapshot.NewBuilder().
	Snapshots *snapshot.Builder

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// InMemoryStore is a volatile core.SharedStateStore implementation holding
// run-scoped shared state in process-local memory. It is safe for concurrent
// access by many workers.
//
// The canonical catalog slot is built at most once per run: concurrent
// EnsureCatalog callers are collapsed through a singleflight group, so the
// expensive catalog builder runs exactly once no matter how many workers race
// on an empty slot. All callers observe the same catalog value or the same
// build error; a failed build leaves the slot empty.
type InMemoryStore struct {
	mu          sync.RWMutex
	catalog     *core.Catalog
	catalogPath string
	knowledge   map[string]*core.DomainKnowledge
	results     []core.ExecutionResult

	group     singleflight.Group
	snapshots *snapshot.Builder
	logger    logging.Logger
}

// Compile-time interface assertion.
var _ core.SharedStateStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory shared state store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Snapshots == nil {
		opts.Snapshots = snapshot.NewBuilder()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &InMemoryStore{
		knowledge: make(map[string]*core.DomainKnowledge),
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
	}
}

// SharedCatalog returns the canonical catalog for the current run, or false
// if none has been built yet.
func (s *InMemoryStore) SharedCatalog() (*core.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, false
	}
	return s.catalog, true
}

// EnsureCatalog returns the canonical catalog, building it exactly once via
// the supplied builder when the slot is empty. The store is
// single-context-per-run: a second, different context path after the slot is
// ready yields core.ErrContextPathMismatch.
func (s *InMemoryStore) EnsureCatalog(ctx context.Context, contextPath string, builder core.CatalogBuilder) (*core.Catalog, error) {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return nil, err
	}

	if cat, done, err := s.readySlot(path); done {
		return cat, err
	}

	v, err, _ := s.group.Do(path, func() (any, error) {
		// Re-check under the group: a racing caller may have completed the
		// build between the fast path and entering the flight.
		if cat, done, err := s.readySlot(path); done {
			return cat, err
		}

		snap, err := s.snapshots.Build(path)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		cat, err := builder.BuildCatalog(ctx, snap)
		if err != nil {
			s.logger.Error("shared catalog build failed", "ctx_path", path, "duration", time.Since(start), "error", err)
			return nil, core.NewCatalogBuilderError(path, err)
		}
		if cat.ContextPath == "" {
			cat.ContextPath = path
		}
		if cat.CreatedAt.IsZero() {
			cat.CreatedAt = time.Now()
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.catalog != nil && s.catalogPath != path {
			// A concurrent flight for a different path won the slot.
			return nil, core.ErrContextPathMismatch
		}
		s.catalog = cat
		s.catalogPath = path
		s.logger.Info("shared catalog ready", "ctx_path", path, "duration", time.Since(start))

		return cat, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Catalog), nil
}

// readySlot inspects the catalog slot. done is true when the caller can
// return immediately: either the canonical catalog for path is ready, or the
// slot is occupied by a different context path.
func (s *InMemoryStore) readySlot(path string) (*core.Catalog, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, false, nil
	}
	if s.catalogPath != path {
		return nil, true, core.ErrContextPathMismatch
	}
	return s.catalog, true, nil
}

// DomainKnowledge returns the knowledge recorded for taskID or
// core.ErrNoKnowledge if the slot is empty.
func (s *InMemoryStore) DomainKnowledge(taskID string) (*core.DomainKnowledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.knowledge[taskID]
	if !ok {
		return nil, core.ErrNoKnowledge
	}
	return k, nil
}

// AllDomainKnowledge returns a copy of the full task-to-knowledge mapping.
// The returned map is safe for caller mutation.
func (s *InMemoryStore) AllDomainKnowledge() map[string]*core.DomainKnowledge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[string]*core.DomainKnowledge, len(s.knowledge))
	for k, v := range s.knowledge {
		res[k] = v
	}
	return res
}

// RecordDomainKnowledge inserts or overwrites the slot for taskID.
// Overwrites are last-writer-wins; a warning is logged rather than merging.
func (s *InMemoryStore) RecordDomainKnowledge(taskID string, knowledge *core.DomainKnowledge) error {
	if taskID == "" {
		return fmt.Errorf("task id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.knowledge[taskID]; exists {
		s.logger.Warn("overwriting domain knowledge", "task_id", taskID)
	}
	s.knowledge[taskID] = knowledge
	return nil
}

// RecordExecutionResult appends to the ordered execution history, assigning
// an id when the result carries none. Entries are never removed.
func (s *InMemoryStore) RecordExecutionResult(result core.ExecutionResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// ExecutionResults returns a copy of the ordered execution history.
func (s *InMemoryStore) ExecutionResults() []core.ExecutionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]core.ExecutionResult, len(s.results))
	copy(res, s.results)
	return res
}
