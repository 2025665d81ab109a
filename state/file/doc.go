// Package file provides a file-backed core.SharedStateStore implementation.
//
// The in-memory store in the parent package is intentionally volatile; this
// backend adds durability behind the exact same accessor contract, so swapping
// it in is a wiring-time decision. Shared state is serialized as a single
// JSON document and rewritten atomically (temp file + rename) after every
// mutation, then reloaded at construction, letting a run resume its canonical
// catalog and per-task knowledge across process restarts.
package file
