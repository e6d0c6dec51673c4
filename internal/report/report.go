// Package report writes the flattened recognition rows to a CSV file with a
// fixed column layout. Rows are flushed as they land so a crash loses at most
// the in-flight row.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresmejia3/facebatch/internal/normalize"
	"github.com/andresmejia3/facebatch/internal/types"
)

// faceFields is the per-match column group, expanded for columns 1..MaxFaceColumns
var faceFields = []string{
	"person_id", "name", "score", "distance", "model",
	"quality", "age", "gender", "emotion", "bbox",
}

// Header returns the fixed CSV header.
func Header() []string {
	header := []string{"file_path", "file_name", "success", "error", "total_faces", "message"}
	for n := 1; n <= normalize.MaxFaceColumns; n++ {
		for _, f := range faceFields {
			header = append(header, fmt.Sprintf("face_%d_%s", n, f))
		}
	}
	return header
}

// Writer appends rows to a CSV file. Like the progress tracker it is only
// touched by the aggregator goroutine, so it needs no locking.
type Writer struct {
	file *os.File
	csv  *csv.Writer
	rows int
}

// Create opens the output file. A fresh or empty file gets the header; a
// non-empty file (resumed run) is appended to as-is.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &Writer{file: f, csv: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := w.csv.Write(Header()); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write CSV header: %w", err)
		}
		w.csv.Flush()
		if err := w.csv.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

// Write appends one row and flushes it to the OS.
func (w *Writer) Write(row normalize.Row) error {
	record := []string{
		row.FilePath,
		filepath.Base(row.FilePath),
		strconv.FormatBool(row.Success),
		row.Error,
		strconv.Itoa(row.TotalFaces),
		row.Message,
	}
	for n := 0; n < normalize.MaxFaceColumns; n++ {
		if n < len(row.Faces) {
			record = append(record, matchFields(row.Faces[n])...)
		} else {
			record = append(record, make([]string, len(faceFields))...)
		}
	}

	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV row: %w", err)
	}
	w.rows++
	return nil
}

// Rows reports how many rows this writer appended in the current run.
func (w *Writer) Rows() int {
	return w.rows
}

// Close syncs and closes the output file.
func (w *Writer) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func matchFields(m types.Match) []string {
	return []string{
		strconv.Itoa(m.PersonID),
		m.Name,
		formatFloat(m.MatchScore),
		formatFloat(m.Distance),
		m.Model,
		formatFloat(m.Quality),
		strconv.Itoa(m.Age),
		m.Gender,
		m.Emotion,
		formatBBox(m.BBox),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}

// formatBBox renders [x y w h] as "x,y,w,h" inside a single CSV cell
func formatBBox(box []int) string {
	if len(box) == 0 {
		return ""
	}
	parts := make([]string, len(box))
	for i, v := range box {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
