package deps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestCheckBinariesResolvesFromPath(t *testing.T) {
	binDir := t.TempDir()
	stub := writeStub(t, binDir, "m4b-tool")
	t.Setenv("PATH", binDir)

	results := CheckBinaries([]Requirement{{Name: "m4b-tool", Command: "m4b-tool"}})
	if !results[0].Available {
		t.Fatalf("expected m4b-tool on PATH, got %q", results[0].Detail)
	}
	if results[0].Command != stub {
		t.Fatalf("expected resolved command %q, got %q", stub, results[0].Command)
	}
}

func TestRequireReportsOnlyMandatoryMissing(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	if err := Require(
		Requirement{Name: "Present", Command: present},
		Requirement{Name: "Extra", Command: "clearly-not-present-binary", Optional: true},
	); err != nil {
		t.Fatalf("expected optional miss to be ignored, got %v", err)
	}

	err := Require(Requirement{Name: "m4b-tool", Command: "clearly-not-present-binary"})
	var missing *MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if len(missing.Missing) != 1 || !strings.Contains(err.Error(), "m4b-tool") {
		t.Fatalf("unexpected missing report: %v", err)
	}
}
