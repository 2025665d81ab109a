// Package worker implements the task processors coordinated by an
// orchestrator run.
//
// Each Worker owns an isolated agent-scoped catalog cache plus a handle to
// the run's shared state store. Catalog lookups follow the two-layer
// protocol: the worker consults its own cache first, falls back to the
// shared store (which builds at most once per run), and writes the shared
// result back into its own cache. Domain knowledge extracted for a task is
// recorded in the shared store together with an execution result.
package worker
