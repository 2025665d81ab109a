// Package state contains concrete implementations of the
// core.SharedStateStore. The store interface itself lives in the core
// package to keep domain contracts central; select an implementation (like
// the in-memory store below, or the file-backed store in the file
// sub-package) at wiring time.
//
// The shared store is the single structure touched by multiple workers
// simultaneously. Its catalog slot follows an Empty -> Building -> Ready
// progression: the first caller to observe Empty wins the build, concurrent
// callers wait for the in-flight build and share its outcome, and a failed
// build returns the slot to Empty so a later call can retry.
package state
