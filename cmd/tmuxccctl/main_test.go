package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/g960059/tmuxccd/internal/idmap"
)

func TestRunNoArgsReturnsUsageError(t *testing.T) {
	if code := run(nil); code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}

func TestRunIdmapDumpMissingSubcommandReturnsError(t *testing.T) {
	if code := run([]string{"idmap"}); code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}

func TestRunIdmapDumpReadsSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := idmap.SnapshotPath(dir, "work")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"tabs":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	code := run([]string{"-cache-dir", dir, "-workspace", "work", "idmap", "dump"})
	if code != 0 {
		t.Fatalf("code = %d, want 0", code)
	}
}

func TestRunIdmapDumpMissingFileReturnsError(t *testing.T) {
	code := run([]string{"-cache-dir", t.TempDir(), "-workspace", "ghost", "idmap", "dump"})
	if code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}

func TestRunDefaultCommandDialFailureReturnsError(t *testing.T) {
	code := run([]string{"-socket", filepath.Join(t.TempDir(), "no-such.sock"), "list-panes"})
	if code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}

func TestRunServerInfoDialFailureReturnsError(t *testing.T) {
	code := run([]string{"-socket", filepath.Join(t.TempDir(), "no-such.sock"), "server-info"})
	if code != 1 {
		t.Fatalf("code = %d, want 1", code)
	}
}
