// Package catalog contains the agent-scoped catalog cache and the
// domain-knowledge extraction coordinator.
//
// Each worker owns its own Cache: a small fixed-capacity (default 1)
// context-path keyed store memoizing the expensive catalog artifact for the
// lifetime of the worker. There is deliberately no cross-worker sharing at
// this layer; run-wide coordination lives in the state package.
//
// The Extractor layers the per-query knowledge extraction contract on top of
// the cache: callers may pass a catalog explicitly (bypassing the cache) or
// let the extractor fall back to the cached or freshly built one. In every
// case the catalog's critical-source subset is recomputed for the query at
// hand before the knowledge builder is invoked.
package catalog
