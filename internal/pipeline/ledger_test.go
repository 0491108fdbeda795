package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLedgerMissingFileIsEmpty(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "processed_queries.txt"))
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if l.Contains("anything") {
		t.Error("empty ledger contains a query")
	}
}

func TestLedgerAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_queries.txt")

	l, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("LoadLedger: %v", err)
	}
	if err := l.Append("cricket in hindi"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := l.Append("news in hindi"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Duplicate append is a no-op.
	if err := l.Append("cricket in hindi"); err != nil {
		t.Fatalf("duplicate Append: %v", err)
	}
	if !l.Contains("cricket in hindi") {
		t.Error("appended query missing")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("ledger file has %d lines, want 2: %q", len(lines), data)
	}

	reloaded, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Contains("cricket in hindi") || !reloaded.Contains("news in hindi") {
		t.Error("reloaded ledger missing entries")
	}
}
