package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.csp")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}
	return path
}

func TestRunUsage(t *testing.T) {
	if status := run(nil); status != 2 {
		t.Fatalf("expected usage exit status 2, got: %d", status)
	}
	if status := run([]string{"a", "b"}); status != 2 {
		t.Fatalf("expected usage exit status 2, got: %d", status)
	}
}

func TestRunMissingFile(t *testing.T) {
	if status := run([]string{filepath.Join(t.TempDir(), "missing.csp")}); status != 2 {
		t.Fatalf("expected exit status 2 for a missing file, got: %d", status)
	}
}

func TestRunWellFormed(t *testing.T) {
	t.Run("tick -> STOP", func(t *testing.T) {
		path := writeTemp(t, "tick → STOP")
		if status := run([]string{path}); status != 0 {
			t.Fatalf("expected exit status 0, got: %d", status)
		}
	})

	t.Run("VMS recursion", func(t *testing.T) {
		path := writeTemp(t, "VMS = (coin → (choc → VMS))")
		if status := run([]string{path}); status != 0 {
			t.Fatalf("expected exit status 0, got: %d", status)
		}
	})
}

func TestRunRepairHints(t *testing.T) {
	t.Run("empty source", func(t *testing.T) {
		path := writeTemp(t, "")
		if status := run([]string{path}); status != 1 {
			t.Fatalf("expected exit status 1, got: %d", status)
		}
	})

	t.Run("duplicate event names", func(t *testing.T) {
		path := writeTemp(t, "{a, a}")
		if status := run([]string{path}); status != 1 {
			t.Fatalf("expected exit status 1, got: %d", status)
		}
	})
}
