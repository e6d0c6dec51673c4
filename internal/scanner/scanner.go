// Package scanner lists the image files of a batch run in a deterministic
// order so resume behavior is reproducible across runs.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions is the allow-list of file extensions the recognition API accepts
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".avif": true,
}

// IsImage reports whether path has an allow-listed image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Scan walks root recursively and returns the absolute paths of all image
// files, lexicographically sorted. A missing or non-directory root is fatal.
func Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", root)
		}
		return nil, fmt.Errorf("unable to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImage(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// FilterDone removes paths already present in the done set, preserving order.
func FilterDone(files []string, done map[string]bool) []string {
	if len(done) == 0 {
		return files
	}
	remaining := files[:0:0]
	for _, f := range files {
		if !done[f] {
			remaining = append(remaining, f)
		}
	}
	return remaining
}
