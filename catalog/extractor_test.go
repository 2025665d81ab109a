package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hupe1980/datamesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingKnowledgeBuilder captures the critical subset passed to each call.
type recordingKnowledgeBuilder struct {
	mu       sync.Mutex
	calls    int
	critical [][]core.CatalogFile
	fail     error
}

func (b *recordingKnowledgeBuilder) BuildKnowledge(_ context.Context, cat *core.Catalog, query string, critical []core.CatalogFile) (*core.DomainKnowledge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.critical = append(b.critical, critical)
	if b.fail != nil {
		return nil, b.fail
	}
	names := make([]string, 0, len(critical))
	for _, f := range critical {
		names = append(names, f.Name)
	}
	return &core.DomainKnowledge{
		Query:               query,
		ContextPath:         cat.ContextPath,
		CriticalSourcesRead: names,
		Response:            map[string]any{"query": query},
	}, nil
}

func TestExtractor_ManualCatalogBypassesCache(t *testing.T) {
	catBuilder := &countingBuilder{}
	knowBuilder := &recordingKnowledgeBuilder{}
	cache := NewCache()
	e := NewExtractor(cache, catBuilder, knowBuilder)

	manual := &core.Catalog{
		ContextPath: "/data",
		Files: []core.CatalogFile{
			{Name: "manual.md", Critical: true},
			{Name: "payments.csv", Critical: false},
		},
	}

	k, err := e.ExtractDomainKnowledge(context.Background(), "fees?", "/data", manual)
	require.NoError(t, err)

	assert.Equal(t, 0, catBuilder.Calls(), "manual passing must not touch the catalog builder")
	assert.Equal(t, 0, cache.Len(), "manual passing must not populate the cache")
	assert.Equal(t, []string{"manual.md"}, k.CriticalSourcesRead)
}

func TestExtractor_FallsBackToCache(t *testing.T) {
	dir := dataDir(t)
	catBuilder := &countingBuilder{}
	knowBuilder := &recordingKnowledgeBuilder{}
	cache := NewCache()
	e := NewExtractor(cache, catBuilder, knowBuilder)

	_, err := e.ExtractDomainKnowledge(context.Background(), "q1", dir, nil)
	require.NoError(t, err)
	_, err = e.ExtractDomainKnowledge(context.Background(), "q2", dir, nil)
	require.NoError(t, err)

	// Catalog built once, reused for the second query.
	assert.Equal(t, 1, catBuilder.Calls())
	assert.True(t, cache.Has(dir))

	// Critical-source identification runs for every query, cached catalog or not.
	assert.Equal(t, 2, knowBuilder.calls)
	for _, crit := range knowBuilder.critical {
		require.Len(t, crit, 1)
		assert.Equal(t, "manual.md", crit[0].Name)
	}
}

func TestExtractor_KnowledgeFailureNotCached(t *testing.T) {
	dir := dataDir(t)
	sentinel := errors.New("extraction blew up")
	catBuilder := &countingBuilder{}
	knowBuilder := &recordingKnowledgeBuilder{fail: sentinel}
	e := NewExtractor(NewCache(), catBuilder, knowBuilder)

	_, err := e.ExtractDomainKnowledge(context.Background(), "q", dir, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)

	var be *core.BuilderError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "knowledge", be.Kind)

	// No negative caching: a retry invokes the knowledge builder again.
	_, err = e.ExtractDomainKnowledge(context.Background(), "q", dir, nil)
	require.Error(t, err)
	assert.Equal(t, 2, knowBuilder.calls)

	// The catalog itself stays cached across knowledge failures.
	assert.Equal(t, 1, catBuilder.Calls())
}

func TestExtractor_CatalogFailurePropagates(t *testing.T) {
	dir := dataDir(t)
	sentinel := errors.New("catalog down")
	catBuilder := &countingBuilder{fail: sentinel}
	knowBuilder := &recordingKnowledgeBuilder{}
	e := NewExtractor(NewCache(), catBuilder, knowBuilder)

	_, err := e.ExtractDomainKnowledge(context.Background(), "q", dir, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, knowBuilder.calls, "knowledge builder must not run without a catalog")
}
