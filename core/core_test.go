package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_CriticalSources(t *testing.T) {
	cat := &Catalog{
		ContextPath: "/data",
		Files: []CatalogFile{
			{Name: "manual.md", Critical: true},
			{Name: "payments.csv", Critical: true},
			{Name: "notes.txt", Critical: false},
		},
	}

	crit := cat.CriticalSources()
	assert.Len(t, crit, 2)
	assert.Equal(t, "manual.md", crit[0].Name)
	assert.Equal(t, "payments.csv", crit[1].Name)

	// Returned slice is a copy; mutating it must not affect the catalog.
	crit[0].Name = "mutated"
	assert.Equal(t, "manual.md", cat.Files[0].Name)
}

func TestCatalog_CriticalSources_Empty(t *testing.T) {
	cat := &Catalog{ContextPath: "/data"}
	assert.Empty(t, cat.CriticalSources())
}

func TestDirectorySnapshot_FilesByCategory(t *testing.T) {
	snap := &DirectorySnapshot{
		Files: []DirectoryEntry{
			{Name: "sales.csv", Category: CategoryData},
			{Name: "README.md", Category: CategoryDocumentation},
			{Name: "script.py", Category: CategoryCode},
			{Name: "extra.csv", Category: CategoryData},
		},
	}

	data := snap.FilesByCategory(CategoryData)
	assert.Len(t, data, 2)
	assert.Empty(t, snap.FilesByCategory(CategoryOther))
}

func TestDirectorySnapshot_ContentEquals(t *testing.T) {
	mk := func() *DirectorySnapshot {
		return &DirectorySnapshot{
			Path:             "/data",
			Files:            []DirectoryEntry{{Name: "a.csv", Path: "/data/a.csv", SizeBytes: 10, Extension: ".csv", Category: CategoryData}},
			Directories:      []DirectoryRef{{Name: "sub", Path: "/data/sub"}},
			TotalFiles:       1,
			TotalDirectories: 1,
		}
	}

	a, b := mk(), mk()
	assert.True(t, a.ContentEquals(b))

	b.Files[0].SizeBytes = 11
	assert.False(t, a.ContentEquals(b))

	var nilSnap *DirectorySnapshot
	assert.False(t, a.ContentEquals(nilSnap))
}

func TestBuilderError_Unwrap(t *testing.T) {
	sentinel := errors.New("model timeout")
	err := NewCatalogBuilderError("/data", sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "catalog builder failed for /data")

	var be *BuilderError
	assert.ErrorAs(t, error(err), &be)
	assert.Equal(t, "catalog", be.Kind)

	kerr := NewKnowledgeBuilderError("/data", sentinel)
	assert.Equal(t, "knowledge", kerr.Kind)
	assert.ErrorIs(t, kerr, sentinel)
}

func TestBuildLimiter(t *testing.T) {
	bl := NewBuildLimiter(2)
	assert.NoError(t, bl.Increment())
	assert.NoError(t, bl.Increment())
	assert.Error(t, bl.Increment())
	assert.Equal(t, 3, bl.Count())
	assert.Equal(t, -1, bl.Remaining())
}

func TestBuildLimiter_Unlimited(t *testing.T) {
	bl := NewBuildLimiter(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, bl.Increment())
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, bl.Count())
	assert.Equal(t, -1, bl.Remaining())
}
