// Package snapshot builds deterministic directory listings for context paths.
//
// The Builder produces a core.DirectorySnapshot: an immutable, fully-populated
// listing of files and subdirectories with metadata and a coarse content
// category per file. Snapshots are the payload injected into downstream
// catalog construction; pre-reading the directory here is what keeps the
// surrounding agent system free of hallucinated file listings.
//
// The builder is a pure function of directory contents at call time: it keeps
// no cache of its own, performs no writes, and never follows symlinks, so the
// read-only security guarantee of the surrounding system is preserved.
package snapshot
