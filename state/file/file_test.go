package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/datamesh/core"
)

type fixedBuilder struct {
	calls int
	fail  error
}

func (b *fixedBuilder) BuildCatalog(_ context.Context, snap *core.DirectorySnapshot) (*core.Catalog, error) {
	b.calls++
	if b.fail != nil {
		return nil, b.fail
	}
	return &core.Catalog{
		Files: []core.CatalogFile{{Name: "manual.md", Critical: true}},
		Payload: map[string]any{
			"total_files": snap.TotalFiles,
		},
	}, nil
}

func ctxDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manual.md"), []byte("# m"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	dir := ctxDir(t)
	builder := &fixedBuilder{}

	svc, err := NewStore(statePath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := svc.EnsureCatalog(context.Background(), dir, builder); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := svc.RecordDomainKnowledge("task-1", &core.DomainKnowledge{TaskID: "task-1", Query: "fees"}); err != nil {
		t.Fatalf("record knowledge: %v", err)
	}
	if err := svc.RecordExecutionResult(core.ExecutionResult{TaskID: "task-1", Status: core.TaskStatusCompleted}); err != nil {
		t.Fatalf("record result: %v", err)
	}

	// Reopen from disk.
	reopened, err := NewStore(statePath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	cat, ok := reopened.SharedCatalog()
	if !ok || cat.ContextPath != dir {
		t.Fatalf("catalog not restored: %v %v", cat, ok)
	}
	if len(cat.CriticalSources()) != 1 {
		t.Fatalf("critical sources not restored")
	}

	k, err := reopened.DomainKnowledge("task-1")
	if err != nil || k.Query != "fees" {
		t.Fatalf("knowledge not restored: %v (%v)", k, err)
	}

	results := reopened.ExecutionResults()
	if len(results) != 1 || results[0].TaskID != "task-1" || results[0].ID == "" {
		t.Fatalf("results not restored: %#v", results)
	}

	// Restored slot counts as Ready: no rebuild.
	if _, err := reopened.EnsureCatalog(context.Background(), dir, builder); err != nil {
		t.Fatalf("ensure after reopen: %v", err)
	}
	if builder.calls != 1 {
		t.Fatalf("expected restored catalog to suppress rebuild, got %d calls", builder.calls)
	}
}

func TestStore_FailedBuildNotPersisted(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	dir := ctxDir(t)
	sentinel := errors.New("down")

	svc, err := NewStore(statePath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := svc.EnsureCatalog(context.Background(), dir, &fixedBuilder{fail: sentinel}); !errors.Is(err, sentinel) {
		t.Fatalf("expected builder failure, got %v", err)
	}
	if _, statErr := os.Stat(statePath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("failed build must not create a state file")
	}
}

func TestStore_MismatchAfterRestore(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	dirP := ctxDir(t)
	dirQ := ctxDir(t)

	svc, err := NewStore(statePath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := svc.EnsureCatalog(context.Background(), dirP, &fixedBuilder{}); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	reopened, err := NewStore(statePath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reopened.EnsureCatalog(context.Background(), dirQ, &fixedBuilder{}); !errors.Is(err, core.ErrContextPathMismatch) {
		t.Fatalf("expected ErrContextPathMismatch, got %v", err)
	}
}

func TestStore_CorruptFileRejected(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(statePath); err == nil {
		t.Fatalf("expected decode error for corrupt state file")
	}
}
