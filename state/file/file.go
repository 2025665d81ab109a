package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
	"github.com/hupe1980/datamesh/snapshot"
)

// persistedState is the on-disk layout. The format is an implementation
// detail of this backend and may change between versions.
type persistedState struct {
	Catalog     *core.Catalog                    `json:"catalog,omitempty"`
	CatalogPath string                           `json:"catalog_path,omitempty"`
	Knowledge   map[string]*core.DomainKnowledge `json:"domain_knowledge"`
	Results     []core.ExecutionResult           `json:"execution_results"`
}

// Options configures a Store.
type Options struct {
	// Snapshots overrides the directory snapshot builder used for catalog
	// construction. Defaults to snapshot.NewBuilder().
	Snapshots *snapshot.Builder

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// Store is a core.SharedStateStore persisted to a single JSON file. It keeps
// the authoritative state in memory and flushes after every mutation, so
// reads never touch the disk. Safe for concurrent use within one process;
// the file is not a cross-process coordination mechanism.
type Store struct {
	mu          sync.RWMutex
	path        string
	catalog     *core.Catalog
	catalogPath string
	knowledge   map[string]*core.DomainKnowledge
	results     []core.ExecutionResult

	group     singleflight.Group
	snapshots *snapshot.Builder
	logger    logging.Logger
}

// Compile-time interface assertion.
var _ core.SharedStateStore = (*Store)(nil)

// NewStore constructs a file-backed shared state store, loading existing
// state from path when the file is present.
func NewStore(path string, optFns ...func(o *Options)) (*Store, error) {
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

	s := &Store{
		path:      path,
		knowledge: make(map[string]*core.DomainKnowledge),
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load shared state: %w", err)
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return fmt.Errorf("decode shared state %s: %w", s.path, err)
	}

	s.catalog = ps.Catalog
	s.catalogPath = ps.CatalogPath
	if ps.Knowledge != nil {
		s.knowledge = ps.Knowledge
	}
	s.results = ps.Results
	s.logger.Info("shared state loaded", "path", s.path, "has_catalog", s.catalog != nil, "knowledge_entries", len(s.knowledge), "execution_results", len(s.results))

	return nil
}

// flushLocked writes the current state to disk. Caller must hold the write
// lock. The write is atomic: a temp file in the target directory is renamed
// over the destination.
func (s *Store) flushLocked() error {
	ps := persistedState{
		Catalog:     s.catalog,
		CatalogPath: s.catalogPath,
		Knowledge:   s.knowledge,
		Results:     s.results,
	}

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("encode shared state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".datamesh-state-*")
	if err != nil {
		return fmt.Errorf("persist shared state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("persist shared state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist shared state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist shared state: %w", err)
	}

	return nil
}

// SharedCatalog returns the canonical catalog for the current run, or false
// if none has been built yet.
func (s *Store) SharedCatalog() (*core.Catalog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, false
	}
	return s.catalog, true
}

// EnsureCatalog returns the canonical catalog, building it exactly once via
// the supplied builder when the slot is empty, and persisting it on success.
// Semantics match the in-memory store: concurrent callers share one build,
// failures leave the slot empty, and a second distinct context path yields
// core.ErrContextPathMismatch.
func (s *Store) EnsureCatalog(ctx context.Context, contextPath string, builder core.CatalogBuilder) (*core.Catalog, error) {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return nil, err
	}

	if cat, done, err := s.readySlot(path); done {
		return cat, err
	}

	v, err, _ := s.group.Do(path, func() (any, error) {
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
			return nil, core.ErrContextPathMismatch
		}
		s.catalog = cat
		s.catalogPath = path
		if err := s.flushLocked(); err != nil {
			// Persistence failure must not poison the slot.
			s.catalog = nil
			s.catalogPath = ""
			return nil, err
		}
		s.logger.Info("shared catalog ready", "ctx_path", path, "duration", time.Since(start))

		return cat, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Catalog), nil
}

func (s *Store) readySlot(path string) (*core.Catalog, bool, error) {
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
func (s *Store) DomainKnowledge(taskID string) (*core.DomainKnowledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.knowledge[taskID]
	if !ok {
		return nil, core.ErrNoKnowledge
	}
	return k, nil
}

// AllDomainKnowledge returns a copy of the full task-to-knowledge mapping.
func (s *Store) AllDomainKnowledge() map[string]*core.DomainKnowledge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make(map[string]*core.DomainKnowledge, len(s.knowledge))
	for k, v := range s.knowledge {
		res[k] = v
	}
	return res
}

// RecordDomainKnowledge inserts or overwrites the slot for taskID and
// persists the change.
func (s *Store) RecordDomainKnowledge(taskID string, knowledge *core.DomainKnowledge) error {
	if taskID == "" {
		return fmt.Errorf("task id must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.knowledge[taskID]
	if existed {
		s.logger.Warn("overwriting domain knowledge", "task_id", taskID)
	}
	s.knowledge[taskID] = knowledge
	if err := s.flushLocked(); err != nil {
		if existed {
			s.knowledge[taskID] = prev
		} else {
			delete(s.knowledge, taskID)
		}
		return err
	}
	return nil
}

// RecordExecutionResult appends to the ordered execution history and
// persists the change.
func (s *Store) RecordExecutionResult(result core.ExecutionResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	if err := s.flushLocked(); err != nil {
		s.results = s.results[:len(s.results)-1]
		return err
	}
	return nil
}

// ExecutionResults returns a copy of the ordered execution history.
func (s *Store) ExecutionResults() []core.ExecutionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]core.ExecutionResult, len(s.results))
	copy(res, s.results)
	return res
}
