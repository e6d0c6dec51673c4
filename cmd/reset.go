package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	resetProgress bool
	resetOutput   bool
	resetLog      bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset run state (progress file, output CSV, log)",
	Long:  "Clears batch-run artifacts. By default, it resets everything. Use flags to clear specific files.",
	Run: func(cmd *cobra.Command, args []string) {
		// If no flags are set, default to clearing EVERYTHING
		if !resetProgress && !resetOutput && !resetLog {
			resetProgress = true
			resetOutput = true
			resetLog = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetProgress {
			if confirm(reader, fmt.Sprintf("⚠️  Delete the progress file %s? Completed files will be reprocessed.", Cfg.Batch.ProgressFile)) {
				removeFile(Cfg.Batch.ProgressFile)
			}
		}

		if resetOutput {
			if confirm(reader, fmt.Sprintf("⚠️  Delete the output CSV %s?", Cfg.Batch.Output)) {
				removeFile(Cfg.Batch.Output)
			}
		}

		if resetLog {
			if confirm(reader, fmt.Sprintf("⚠️  Delete the run log %s?", Cfg.Logging.File)) {
				removeFile(Cfg.Logging.File)
			}
		}

		fmt.Println("✨ Reset complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetProgress, "progress", false, "Clear the resume marker file")
	resetCmd.Flags().BoolVar(&resetOutput, "output", false, "Clear the output CSV")
	resetCmd.Flags().BoolVar(&resetLog, "log", false, "Clear the run log")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
