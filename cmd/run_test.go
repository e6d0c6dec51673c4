package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andresmejia3/facebatch/internal/config"
)

// newTestServer fakes the recognition API: files whose name contains
// "corrupt" get a 422, everything else one known match.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing multipart field 'file': %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if strings.Contains(header.Filename, "corrupt") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid image data"})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"total_faces": 1,
			"message":     "1 face detected",
			"matches": []map[string]interface{}{
				{"person_id": 1, "name": "Ada", "match_score": 0.93, "distance": 0.27},
			},
		})
	}))
}

func testSetup(t *testing.T, serverURL string) (Options, string) {
	t.Helper()
	dir := t.TempDir()

	Cfg = config.Default()
	Cfg.API.URL = serverURL
	Cfg.API.Timeout = config.Duration(5 * time.Second)
	Cfg.Logging.File = ""

	opts := Options{
		OutputFile:    filepath.Join(dir, "out.csv"),
		ProgressFile:  filepath.Join(dir, "progress.txt"),
		MaxConcurrent: 3,
	}
	return opts, dir
}

func writeImages(t *testing.T, dir string, names ...string) string {
	t.Helper()
	folder := filepath.Join(dir, "photos")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(folder, name), []byte{0xFF, 0xD8, 0xFF, 0xD9}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return folder
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestRunBatchEndToEnd(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	opts, dir := testSetup(t, server.URL)
	folder := writeImages(t, dir, "a.jpg", "b.jpg", "c.jpg", "corrupt.jpg")

	if err := runBatch(context.Background(), folder, opts); err != nil {
		t.Fatalf("runBatch failed: %v", err)
	}

	records := readCSV(t, opts.OutputFile)
	if len(records) != 5 { // header + 4 rows
		t.Fatalf("expected 5 CSV records, got %d", len(records))
	}

	failures := 0
	for _, row := range records[1:] {
		if row[2] == "false" {
			failures++
			if !strings.Contains(row[3], "invalid image data") {
				t.Errorf("expected API error in error column, got %q", row[3])
			}
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly 1 failed row, got %d", failures)
	}

	// Every file, including the failed one, is recorded for resume
	data, err := os.ReadFile(opts.ProgressFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(strings.Split(strings.TrimSpace(string(data)), "\n")); got != 4 {
		t.Errorf("expected 4 progress entries, got %d", got)
	}
}

func TestRunBatchResume(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	opts, dir := testSetup(t, server.URL)
	folder := writeImages(t, dir, "a.jpg", "b.jpg")

	if err := runBatch(context.Background(), folder, opts); err != nil {
		t.Fatal(err)
	}

	// Add one new file and run again: only it may produce a new row
	if err := os.WriteFile(filepath.Join(folder, "late.jpg"), []byte{0xFF, 0xD8, 0xFF, 0xD9}, 0644); err != nil {
		t.Fatal(err)
	}
	if err := runBatch(context.Background(), folder, opts); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, opts.OutputFile)
	if len(records) != 4 { // header + 3 rows, no duplicates
		t.Fatalf("expected 4 CSV records after resume, got %d", len(records))
	}

	seen := make(map[string]bool)
	for _, row := range records[1:] {
		if seen[row[0]] {
			t.Errorf("duplicate row for %s after resume", row[0])
		}
		seen[row[0]] = true
	}
}

func TestRunBatchNoResumeReprocesses(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	opts, dir := testSetup(t, server.URL)
	opts.NoResume = true
	folder := writeImages(t, dir, "a.jpg", "b.jpg")

	if err := runBatch(context.Background(), folder, opts); err != nil {
		t.Fatal(err)
	}
	if err := runBatch(context.Background(), folder, opts); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, opts.OutputFile)
	if len(records) != 5 { // header + 2 rows per run
		t.Errorf("expected 5 CSV records with --no-resume, got %d", len(records))
	}
}

func TestRunBatchMissingFolder(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	opts, _ := testSetup(t, server.URL)
	if err := runBatch(context.Background(), "/nonexistent/photos", opts); err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestValidateRunFlags(t *testing.T) {
	Cfg = config.Default()

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{
			name: "valid options",
			opts: Options{
				OutputFile:    "out.csv",
				ProgressFile:  "progress.txt",
				MaxConcurrent: 5,
			},
			wantErr: false,
		},
		{
			name: "invalid max-concurrent",
			opts: Options{
				OutputFile:    "out.csv",
				ProgressFile:  "progress.txt",
				MaxConcurrent: 0,
			},
			wantErr: true,
		},
		{
			name: "empty output",
			opts: Options{
				ProgressFile:  "progress.txt",
				MaxConcurrent: 5,
			},
			wantErr: true,
		},
		{
			name: "empty progress file",
			opts: Options{
				OutputFile:    "out.csv",
				MaxConcurrent: 5,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateRunFlags(&tt.opts); (err != nil) != tt.wantErr {
				t.Errorf("validateRunFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeRunDefaults(t *testing.T) {
	Cfg = config.Default()
	Cfg.Batch.SkipUnknown = true

	opts := Options{}
	mergeRunDefaults(&opts)

	if opts.OutputFile != "recognition_results.csv" {
		t.Errorf("expected default output file, got %s", opts.OutputFile)
	}
	if opts.ProgressFile != "progress.txt" {
		t.Errorf("expected default progress file, got %s", opts.ProgressFile)
	}
	if opts.MaxConcurrent != 5 {
		t.Errorf("expected default max-concurrent 5, got %d", opts.MaxConcurrent)
	}
	if !opts.SkipUnknown {
		t.Error("expected skip-unknown inherited from config")
	}
}
