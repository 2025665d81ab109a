package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/hupe1980/datamesh/core"
)

// categoryByExtension is the fixed classification table. Lookup is exact-match
// on the lowercased extension; no content sniffing, so classification is
// reproducible across runs.
var categoryByExtension = map[string]core.FileCategory{
	".csv":     core.CategoryData,
	".json":    core.CategoryData,
	".parquet": core.CategoryData,
	".xlsx":    core.CategoryData,

	".md":   core.CategoryDocumentation,
	".rst":  core.CategoryDocumentation,
	".txt":  core.CategoryDocumentation,
	".pdf":  core.CategoryDocumentation,
	".doc":  core.CategoryDocumentation,
	".docx": core.CategoryDocumentation,

	".py":    core.CategoryCode,
	".ipynb": core.CategoryCode,
	".r":     core.CategoryCode,
	".sql":   core.CategoryCode,
}

// Classify returns the content category for a file name based on its
// extension, falling back to CategoryOther for unknown extensions.
func Classify(name string) core.FileCategory {
	ext := strings.ToLower(filepath.Ext(name))
	if cat, ok := categoryByExtension[ext]; ok {
		return cat
	}
	return core.CategoryOther
}
