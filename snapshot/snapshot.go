package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/datamesh/core"
	"github.com/hupe1980/datamesh/logging"
)

// Options configures a Builder.
type Options struct {
	// MaxDepth controls subdirectory expansion. 0 (the default) records
	// immediate subdirectories as lazily-unexpanded references; a positive
	// value expands nested snapshots down that many levels.
	MaxDepth int

	// Logger defaults to a NoOp logger if nil.
	Logger logging.Logger
}

// Builder produces directory snapshots. It is stateless and safe for
// concurrent use; each Build call reads the filesystem afresh.
type Builder struct {
	maxDepth int
	logger   logging.Logger
}

// NewBuilder constructs a Builder with optional overrides.
func NewBuilder(optFns ...func(o *Options)) *Builder {
	opts := Options{
		MaxDepth: 0,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Builder{maxDepth: opts.MaxDepth, logger: opts.Logger}
}

// Build returns a snapshot of the directory at path. It fails with
// core.ErrInvalidContextPath for an empty path, core.ErrPathNotFound if the
// path does not exist, core.ErrNotADirectory if it is not a directory and
// core.ErrPermission if it cannot be read. Symlinks are recorded neither as
// files nor as directories; following them could escape the supplied root.
func (b *Builder) Build(path string) (*core.DirectorySnapshot, error) {
	abs, err := core.NormalizeContextPath(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	snap, err := b.build(abs, 0)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("directory snapshot built", "ctx_path", abs, "total_files", snap.TotalFiles, "total_directories", snap.TotalDirectories, "duration", time.Since(start))

	return snap, nil
}

func (b *Builder) build(abs string, depth int) (*core.DirectorySnapshot, error) {
	info, err := os.Stat(abs)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s", core.ErrPathNotFound, abs)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s", core.ErrPermission, abs)
		default:
			return nil, fmt.Errorf("stat %s: %w", abs, err)
		}
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", core.ErrNotADirectory, abs)
	}

	// ReadDir returns entries sorted by filename, giving snapshots a stable
	// order without further work.
	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", core.ErrPermission, abs)
		}
		return nil, fmt.Errorf("read dir %s: %w", abs, err)
	}

	snap := &core.DirectorySnapshot{
		Path:        abs,
		Files:       []core.DirectoryEntry{},
		Directories: []core.DirectoryRef{},
		TakenAt:     time.Now(),
	}

	for _, entry := range entries {
		entryPath := filepath.Join(abs, entry.Name())

		if entry.Type()&fs.ModeSymlink != 0 {
			b.logger.Debug("skipping symlink in snapshot", "path", entryPath)
			continue
		}

		if entry.IsDir() {
			ref := core.DirectoryRef{Name: entry.Name(), Path: entryPath}
			if depth < b.maxDepth {
				sub, err := b.build(entryPath, depth+1)
				if err != nil {
					return nil, err
				}
				ref.Snapshot = sub
			}
			snap.Directories = append(snap.Directories, ref)
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entryPath, err)
		}

		snap.Files = append(snap.Files, core.DirectoryEntry{
			Name:      entry.Name(),
			Path:      entryPath,
			SizeBytes: fi.Size(),
			Extension: strings.ToLower(filepath.Ext(entry.Name())),
			Category:  Classify(entry.Name()),
		})
	}

	snap.TotalFiles = len(snap.Files)
	snap.TotalDirectories = len(snap.Directories)

	return snap, nil
}
