// Package progress maintains the append-only marker file of fully processed
// input paths. It is the only persistence in the tool and the whole resume
// mechanism: rows are retried across runs simply by not being in this file.
package progress

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Tracker appends completed file paths to a marker file. Writes are
// serialized by the caller (the single aggregator goroutine), so no locking
// is needed here.
type Tracker struct {
	path string
	file *os.File
	done map[string]bool
}

// Open loads the existing marker file (if any) and prepares it for appends.
func Open(path string) (*Tracker, error) {
	done := make(map[string]bool)

	if data, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(data)))
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" {
				done[line] = true
			}
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read progress file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress file: %w", err)
	}

	return &Tracker{path: path, file: f, done: done}, nil
}

// Done returns the set of already-completed paths loaded at Open time.
func (t *Tracker) Done() map[string]bool {
	return t.done
}

// Mark records a path as completed. The line is synced to disk so a crash
// after Mark never reprocesses the file.
func (t *Tracker) Mark(path string) error {
	if t.done[path] {
		return nil
	}
	if _, err := fmt.Fprintln(t.file, path); err != nil {
		return fmt.Errorf("failed to append to progress file: %w", err)
	}
	if err := t.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync progress file: %w", err)
	}
	t.done[path] = true
	return nil
}

// Close releases the underlying file.
func (t *Tracker) Close() error {
	return t.file.Close()
}
