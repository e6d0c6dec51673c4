package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check whether the recognition API is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		status, err := APIClient().Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("API unreachable at %s: %w", Cfg.API.URL, err)
		}

		// Any HTTP answer means the server is up; recognition endpoints are
		// typically POST-only, so a 405 here is normal.
		fmt.Printf("✅ API reachable at %s (HTTP %d)\n", Cfg.API.URL, status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
