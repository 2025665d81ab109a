// Package core provides the foundational domain types and interfaces used by
// DataMesh. It defines the core abstractions for:
//
//   - Directory snapshots (deterministic, hallucination-free listings of a
//     context path)
//   - Catalogs (structured summaries of a context path's data sources,
//     including which sources are critical)
//   - Domain knowledge (per-task extractions derived from a catalog)
//   - Pluggable builders for catalog construction and knowledge extraction
//   - The shared state store contract coordinating concurrent workers
//
// The package intentionally keeps implementation concerns (filesystem
// walking, caching, store backends, orchestration) out of scope, exposing
// small interfaces to enable custom backends and extensions. All exported
// identifiers include concise documentation to aid discoverability and
// external consumption.
package core
