package core

import "time"

// FileCategory is a coarse content classification assigned to a file based on
// its extension. Classification is exact-match deterministic so snapshots are
// reproducible across runs; no content sniffing is performed.
type FileCategory string

const (
	// CategoryData marks tabular or structured data files (csv, json, parquet, ...).
	CategoryData FileCategory = "data"
	// CategoryDocumentation marks prose and manuals (md, txt, pdf, ...).
	CategoryDocumentation FileCategory = "documentation"
	// CategoryCode marks source code files (py, ipynb, sql, ...).
	CategoryCode FileCategory = "code"
	// CategoryOther marks everything without a known extension.
	CategoryOther FileCategory = "other"
)

// DirectoryEntry describes a single regular file inside a snapshot. Entries
// are immutable once produced.
type DirectoryEntry struct {
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	SizeBytes int64        `json:"size_bytes"`
	Extension string       `json:"extension"`
	Category  FileCategory `json:"category"`
}

// DirectoryRef is a lazily-unexpanded reference to a subdirectory. When the
// snapshot builder is configured with a depth budget, subdirectories beyond
// that budget are recorded as references instead of nested snapshots.
type DirectoryRef struct {
	Name     string             `json:"name"`
	Path     string             `json:"path"`
	Snapshot *DirectorySnapshot `json:"snapshot,omitempty"`
}

// DirectorySnapshot is an immutable, fully-populated listing of a directory
// at the instant of creation. Two snapshots of the same path taken at
// different times are distinct values; there is no implicit equality across
// time and no caching at this layer.
type DirectorySnapshot struct {
	Path             string           `json:"directory_path"`
	Files            []DirectoryEntry `json:"files"`
	Directories      []DirectoryRef   `json:"directories"`
	TotalFiles       int              `json:"total_files"`
	TotalDirectories int              `json:"total_directories"`
	TakenAt          time.Time        `json:"taken_at"`
}

// FilesByCategory returns the subset of file entries matching the given
// category. The returned slice is a fresh allocation safe for caller mutation.
func (s *DirectorySnapshot) FilesByCategory(cat FileCategory) []DirectoryEntry {
	res := make([]DirectoryEntry, 0, len(s.Files))
	for _, f := range s.Files {
		if f.Category == cat {
			res = append(res, f)
		}
	}
	return res
}

// ContentEquals reports structural equality of directory contents (paths,
// sizes, categories and subdirectory listings) ignoring capture timestamps.
// Used to verify snapshot determinism without implying value identity.
func (s *DirectorySnapshot) ContentEquals(other *DirectorySnapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Path != other.Path || s.TotalFiles != other.TotalFiles || s.TotalDirectories != other.TotalDirectories {
		return false
	}
	if len(s.Files) != len(other.Files) || len(s.Directories) != len(other.Directories) {
		return false
	}
	for i, f := range s.Files {
		if f != other.Files[i] {
			return false
		}
	}
	for i, d := range s.Directories {
		od := other.Directories[i]
		if d.Name != od.Name || d.Path != od.Path {
			return false
		}
		if (d.Snapshot == nil) != (od.Snapshot == nil) {
			return false
		}
		if d.Snapshot != nil && !d.Snapshot.ContentEquals(od.Snapshot) {
			return false
		}
	}
	return true
}
