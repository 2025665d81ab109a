package datamesh

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/datamesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataMesh_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "payments.csv"), []byte("a,b\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manual.md"), []byte("# manual"), 0o644))

	var catalogBuilds atomic.Int32
	catalogBuilder := core.CatalogBuilderFunc(func(_ context.Context, snap *core.DirectorySnapshot) (*core.Catalog, error) {
		catalogBuilds.Add(1)
		files := make([]core.CatalogFile, 0, len(snap.Files))
		for _, f := range snap.Files {
			files = append(files, core.CatalogFile{Name: f.Name, Path: f.Path, FileType: f.Category, Critical: f.Category == core.CategoryDocumentation})
		}
		return &core.Catalog{Files: files}, nil
	})

	knowledgeBuilder := core.KnowledgeBuilderFunc(func(_ context.Context, cat *core.Catalog, query string, critical []core.CatalogFile) (*core.DomainKnowledge, error) {
		names := make([]string, 0, len(critical))
		for _, f := range critical {
			names = append(names, f.Name)
		}
		return &core.DomainKnowledge{Query: query, ContextPath: cat.ContextPath, CriticalSourcesRead: names, Response: "ok"}, nil
	})

	mesh := New(catalogBuilder, knowledgeBuilder, func(o *Options) { o.Concurrency = 2 })
	assert.NotEmpty(t, mesh.RunID())

	snap, err := mesh.SnapshotDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalFiles)

	tasks := []core.Task{
		{ID: "fees", Query: "average fee?"},
		{ID: "volume", Query: "total volume?"},
		{ID: "merchants", Query: "merchant count?"},
	}

	results, err := mesh.SolveTasks(context.Background(), tasks, dir)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, core.TaskStatusCompleted, r.Status)
	}

	assert.Equal(t, int32(1), catalogBuilds.Load())

	cat, ok := mesh.SharedCatalog()
	require.True(t, ok)
	assert.Len(t, cat.Files, 2)

	k, err := mesh.DomainKnowledge("fees")
	require.NoError(t, err)
	assert.Equal(t, []string{"manual.md"}, k.CriticalSourcesRead)

	assert.Len(t, mesh.AllDomainKnowledge(), 3)
	assert.Len(t, mesh.ExecutionResults(), 3)

	// A follow-up single task reuses the canonical catalog.
	result, err := mesh.SolveTask(context.Background(), core.Task{ID: "late", Query: "anything?"}, dir)
	require.NoError(t, err)
	assert.Equal(t, core.TaskStatusCompleted, result.Status)
	assert.Equal(t, int32(1), catalogBuilds.Load())
}
