package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/facebatch/internal/scanner"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image_path>",
	Short: "Recognize the faces in a single image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runRecognize(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, imagePath string) error {
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", imagePath)
	}
	if !scanner.IsImage(imagePath) {
		fmt.Fprintf(os.Stderr, "⚠️  %s does not have a supported image extension, sending anyway.\n", imagePath)
	}

	fmt.Fprintln(os.Stderr, "🔍 Analyzing image...")
	resp, err := APIClient().Recognize(cmd.Context(), imagePath)
	if err != nil {
		return err
	}

	if !resp.Success {
		fmt.Printf("❌ API reported failure: %s\n", resp.Message)
		return nil
	}
	if resp.TotalFaces == 0 {
		fmt.Println("❌ No faces detected in the provided image.")
		return nil
	}

	fmt.Printf("✅ %d face(s) detected: %s\n", resp.TotalFaces, resp.Message)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "\nPERSON\tSCORE\tDISTANCE\tAGE\tGENDER\tEMOTION")
	fmt.Fprintln(w, "------\t-----\t--------\t---\t------\t-------")
	for _, m := range resp.Matches {
		name := m.Name
		if !m.Known() {
			name = "(unknown)"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\t%s\t%s\n",
			name, m.MatchScore, m.Distance, m.Age, m.Gender, m.Emotion)
	}
	return w.Flush()
}
