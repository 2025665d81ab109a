package core

import "time"

// CatalogFile is one cataloged data source. The Critical flag marks sources
// that must be read for every downstream query regardless of apparent
// relevance (documentation with essential usage instructions, key data files
// referenced by that documentation).
type CatalogFile struct {
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Format   string         `json:"format"`
	FileType FileCategory   `json:"file_type"`
	Critical bool           `json:"is_critical"`
	Summary  string         `json:"summary"`
	Details  map[string]any `json:"content_details,omitempty"`
}

// Catalog is the structured artifact produced by a CatalogBuilder for one
// context path. The Payload field carries builder-specific content that the
// coordination core passes through unmodified; the core only associates a
// catalog 1:1 with the context path that produced it and selects its
// critical-source subset.
type Catalog struct {
	ContextPath       string         `json:"ctx_path"`
	Files             []CatalogFile  `json:"files"`
	DataRelationships []string       `json:"data_relationships,omitempty"`
	KeyConstraints    []string       `json:"key_constraints,omitempty"`
	UsageGuidelines   []string       `json:"usage_guidelines,omitempty"`
	Payload           map[string]any `json:"payload,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// CriticalSources returns the subset of cataloged files marked critical. The
// returned slice is a fresh allocation safe for caller mutation.
func (c *Catalog) CriticalSources() []CatalogFile {
	res := make([]CatalogFile, 0, len(c.Files))
	for _, f := range c.Files {
		if f.Critical {
			res = append(res, f)
		}
	}
	return res
}
