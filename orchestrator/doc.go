// Package orchestrator coordinates multi-worker analysis runs.
//
// An Orchestrator owns the run's shared state store and a fixed pool of
// workers. Tasks fan out across the pool with bounded parallelism; each
// task's outcome lands in the store's append-only execution history, and
// successful extractions additionally populate the per-task domain
// knowledge mapping. The first worker to need the catalog triggers the
// run's single canonical build; every other worker waits on and reuses it.
package orchestrator
