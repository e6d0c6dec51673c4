package progress

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")

	tr, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if len(tr.Done()) != 0 {
		t.Errorf("expected empty done set, got %d entries", len(tr.Done()))
	}

	if err := tr.Mark("/photos/a.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Mark("/photos/b.jpg"); err != nil {
		t.Fatal(err)
	}
	// Marking twice must not duplicate the line
	if err := tr.Mark("/photos/a.jpg"); err != nil {
		t.Fatal(err)
	}
	tr.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines in progress file, got %d: %q", len(lines), string(data))
	}

	// Reopen simulates a resumed run
	tr2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer tr2.Close()

	done := tr2.Done()
	if !done["/photos/a.jpg"] || !done["/photos/b.jpg"] {
		t.Errorf("expected both paths in done set, got %v", done)
	}

	// Appends after reopen keep prior entries intact
	if err := tr2.Mark("/photos/c.jpg"); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if got := len(strings.Split(strings.TrimSpace(string(data)), "\n")); got != 3 {
		t.Errorf("expected 3 lines after resumed append, got %d", got)
	}
}

func TestOpenIgnoresBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.txt")
	if err := os.WriteFile(path, []byte("/p/a.jpg\n\n  \n/p/b.jpg\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tr, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if len(tr.Done()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(tr.Done()))
	}
}

func TestOpenBadDirectory(t *testing.T) {
	if _, err := Open("/nonexistent/dir/progress.txt"); err == nil {
		t.Error("expected error for unwritable progress path")
	}
}
