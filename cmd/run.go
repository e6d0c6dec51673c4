package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andresmejia3/facebatch/internal/logging"
	"github.com/andresmejia3/facebatch/internal/normalize"
	"github.com/andresmejia3/facebatch/internal/progress"
	"github.com/andresmejia3/facebatch/internal/report"
	"github.com/andresmejia3/facebatch/internal/scanner"
	"github.com/andresmejia3/facebatch/internal/worker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var runOpts Options

var runCmd = &cobra.Command{
	Use:   "run <folder>",
	Short: "Recognize every image in a folder with bounded parallelism",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runBatch(cmd.Context(), args[0], runOpts)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOpts.OutputFile, "output", "o", "", "Output CSV file (default recognition_results.csv)")
	runCmd.Flags().IntVarP(&runOpts.MaxConcurrent, "max-concurrent", "c", 0, "Maximum in-flight requests (default 5)")
	runCmd.Flags().StringVar(&runOpts.ProgressFile, "progress-file", "", "Resume marker file (default progress.txt)")
	runCmd.Flags().BoolVar(&runOpts.NoResume, "no-resume", false, "Reprocess files already recorded in the progress file")
	runCmd.Flags().BoolVar(&runOpts.PrioritizeKnown, "prioritize-known", false, "Move identified persons ahead of unknown detections before column truncation")
	runCmd.Flags().BoolVar(&runOpts.SkipUnknown, "skip-unknown", false, "Drop rows where every detected face is unknown")
	rootCmd.AddCommand(runCmd)
}

// batchStats aggregates the end-of-run summary
type batchStats struct {
	Succeeded  int
	Failed     int
	Skipped    int
	Aborted    int
	TotalFaces int
}

// runBatch orchestrates a batch run: scan, resume filter, worker pool,
// aggregation into the CSV and the progress file.
func runBatch(ctx context.Context, folder string, opts Options) error {
	mergeRunDefaults(&opts)
	if err := validateRunFlags(&opts); err != nil {
		return err
	}

	tracker, err := progress.Open(opts.ProgressFile)
	if err != nil {
		return err
	}
	defer tracker.Close()

	files, err := scanner.Scan(folder)
	if err != nil {
		return err
	}
	scanned := len(files)

	if !opts.NoResume {
		files = scanner.FilterDone(files, tracker.Done())
	}
	resumed := scanned - len(files)

	logging.WithFields(logging.Fields{
		"folder":     folder,
		"scanned":    scanned,
		"resumed":    resumed,
		"workers":    opts.MaxConcurrent,
		"api_url":    Cfg.API.URL,
		"skip":       opts.SkipUnknown,
		"prioritize": opts.PrioritizeKnown,
	}).Info("starting batch run")

	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "✅ Nothing to do: all %d images already processed.\n", scanned)
		return nil
	}
	fmt.Fprintf(os.Stderr, "📁 %d images found (%d already done), %d to process\n", scanned, resumed, len(files))

	writer, err := report.Create(opts.OutputFile)
	if err != nil {
		return err
	}
	defer writer.Close()

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("🔍 Recognizing"),
		progressbar.OptionSetWriter(os.Stderr), // Write bar to Stderr
		progressbar.OptionShowCount(),
	)

	policy := normalize.Policy{
		PrioritizeKnown: opts.PrioritizeKnown,
		SkipUnknown:     opts.SkipUnknown,
	}
	pool := worker.NewPool(APIClient(), opts.MaxConcurrent)

	var stats batchStats
	for res := range pool.Run(ctx, files) {
		// An aborted in-flight request is not an outcome: leave the file
		// out of the CSV and the progress file so the next run retries it.
		if res.Err != nil && errors.Is(res.Err, context.Canceled) {
			stats.Aborted++
			continue
		}

		row, keep := normalize.Apply(res, policy)
		if keep {
			if err := writer.Write(row); err != nil {
				return err
			}
		} else {
			stats.Skipped++
		}
		// Progress append happens after the row is durably written; a crash
		// between the two can duplicate one file on resume, which we accept.
		if err := tracker.Mark(res.FilePath); err != nil {
			return err
		}

		if res.Err != nil {
			stats.Failed++
			logging.Warnf("%s failed: %v", res.FilePath, res.Err)
		} else {
			stats.Succeeded++
			stats.TotalFaces += res.Resp.TotalFaces
		}
		bar.Add(1)
	}

	bar.Finish()
	printSummary(opts, stats, writer.Rows())

	if stats.Aborted > 0 || ctx.Err() != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Run interrupted. Re-run the same command to resume.\n")
	}
	return nil
}

func printSummary(opts Options, stats batchStats, rows int) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "📊 BATCH SUMMARY\n")
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "✅ Succeeded:        %d\n", stats.Succeeded)
	fmt.Fprintf(os.Stderr, "❌ Failed:           %d\n", stats.Failed)
	if opts.SkipUnknown {
		fmt.Fprintf(os.Stderr, "⏭️  Skipped (unknown): %d\n", stats.Skipped)
	}
	if stats.Aborted > 0 {
		fmt.Fprintf(os.Stderr, "🛑 Aborted:          %d\n", stats.Aborted)
	}
	fmt.Fprintf(os.Stderr, "👁️  Faces seen:       %d\n", stats.TotalFaces)
	fmt.Fprintf(os.Stderr, "📄 Rows written:     %d -> %s\n", rows, opts.OutputFile)
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")

	logging.WithFields(logging.Fields{
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"skipped":   stats.Skipped,
		"aborted":   stats.Aborted,
		"faces":     stats.TotalFaces,
		"rows":      rows,
	}).Info("batch run finished")
}

// mergeRunDefaults fills unset flags from the merged configuration.
func mergeRunDefaults(opts *Options) {
	if opts.OutputFile == "" {
		opts.OutputFile = Cfg.Batch.Output
	}
	if opts.ProgressFile == "" {
		opts.ProgressFile = Cfg.Batch.ProgressFile
	}
	if opts.MaxConcurrent == 0 {
		opts.MaxConcurrent = Cfg.Batch.MaxConcurrent
	}
	if Cfg.Batch.PrioritizeKnown {
		opts.PrioritizeKnown = true
	}
	if Cfg.Batch.SkipUnknown {
		opts.SkipUnknown = true
	}
}

// validateRunFlags ensures all CLI arguments are valid before any file is touched.
func validateRunFlags(opts *Options) error {
	if opts.MaxConcurrent < 1 {
		return fmt.Errorf("invalid max-concurrent: must be >= 1, got %d", opts.MaxConcurrent)
	}
	if opts.OutputFile == "" {
		return fmt.Errorf("output file must not be empty")
	}
	if opts.ProgressFile == "" {
		return fmt.Errorf("progress file must not be empty")
	}
	if Cfg.API.URL == "" {
		return fmt.Errorf("no API URL configured")
	}
	return nil
}
