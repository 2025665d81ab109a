package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
	"github.com/hupe1980/datamesh/snapshot"
)

// CacheEntry is one memoized catalog slot.
type CacheEntry struct {
	ContextPath string
	Catalog     *core.Catalog
	CreatedAt   time.Time
}

// Options configures a Cache.
type Options struct {
	// Capacity is the number of context paths cached simultaneously. The
	// source design holds exactly one slot; raising this turns the cache
	// into a multi-context store without any further change.
	Capacity int

	// Snapshots overrides the directory snapshot builder used on cache
	// misses. Defaults to snapshot.NewBuilder().
	Snapshots *snapshot.Builder

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// Cache memoizes one catalog per context path for the lifetime of a single
// worker. It is safe for concurrent use, although workers typically access
// their own cache sequentially.
//
// Contract:
//   - GetOrBuild invokes the builder at most once per unique context path
//     until the entry is evicted or force-refreshed
//   - a failed build leaves previously cached entries untouched
//   - when capacity is exceeded the oldest entry is evicted silently
type Cache struct {
	mu        sync.RWMutex
	capacity  int
	entries   map[string]*CacheEntry
	order     []string // insertion order, oldest first
	snapshots *snapshot.Builder
	logger    logging.Logger
}

// NewCache constructs a Cache with optional overrides.
func NewCache(optFns ...func(o *Options)) *Cache {
	opts := Options{
		Capacity: 1,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Capacity < 1 {
		opts.Capacity = 1
	}
	if opts.Snapshots == nil {
		opts.Snapshots = snapshot.NewBuilder()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Cache{
		capacity:  opts.Capacity,
		entries:   make(map[string]*CacheEntry, opts.Capacity),
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
	}
}

// GetOrBuild returns the memoized catalog for contextPath, building it via
// the supplied builder when forced, missing, or cached for a different path.
// Builder and snapshot failures propagate unchanged to the caller and leave
// the cache exactly as it was; only a successful build replaces a slot.
func (c *Cache) GetOrBuild(ctx context.Context, contextPath string, forceRefresh bool, builder core.CatalogBuilder) (*core.Catalog, error) {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return nil, err
	}

	if !forceRefresh {
		c.mu.RLock()
		entry, ok := c.entries[path]
		c.mu.RUnlock()
		if ok {
			c.logger.Debug("using cached catalog", "ctx_path", path)
			return entry.Catalog, nil
		}
	}

	snap, err := c.snapshots.Build(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cat, err := builder.BuildCatalog(ctx, snap)
	if err != nil {
		c.logger.Error("catalog build failed", "ctx_path", path, "duration", time.Since(start), "error", err)
		return nil, core.NewCatalogBuilderError(path, err)
	}
	if cat.ContextPath == "" {
		cat.ContextPath = path
	}
	if cat.CreatedAt.IsZero() {
		cat.CreatedAt = time.Now()
	}

	c.store(path, cat)
	c.logger.Info("catalog built and cached", "ctx_path", path, "duration", time.Since(start))

	return cat, nil
}

func (c *Cache) store(path string, cat *core.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[path]; ok {
		// Refresh of an existing slot keeps its position in the order.
		c.entries[path] = &CacheEntry{ContextPath: path, Catalog: cat, CreatedAt: time.Now()}
		return
	}

	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.logger.Debug("evicted cached catalog", "ctx_path", oldest)
	}

	c.entries[path] = &CacheEntry{ContextPath: path, Catalog: cat, CreatedAt: time.Now()}
	c.order = append(c.order, path)
}

// Put seeds the cache with an externally obtained catalog (typically the
// run's canonical catalog from the shared state store), subject to the same
// capacity and eviction rules as built entries.
func (c *Cache) Put(contextPath string, cat *core.Catalog) error {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return err
	}
	c.store(path, cat)
	return nil
}

// Peek returns the most recently stored catalog regardless of which context
// path it belongs to, without mutating the cache.
func (c *Cache) Peek() (*core.Catalog, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.order) == 0 {
		return nil, false
	}
	entry := c.entries[c.order[len(c.order)-1]]
	return entry.Catalog, true
}

// Get returns the cached catalog for exactly this context path without
// building on a miss.
func (c *Cache) Get(contextPath string) (*core.Catalog, bool) {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[path]
	if !ok {
		return nil, false
	}
	return entry.Catalog, true
}

// Has reports whether a cached catalog exists for exactly this context path.
func (c *Cache) Has(contextPath string) bool {
	path, err := core.NormalizeContextPath(contextPath)
	if err != nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[path]
	return ok
}

// Invalidate discards every cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CacheEntry, c.capacity)
	c.order = nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
