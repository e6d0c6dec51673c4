package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresmejia3/facebatch/internal/client"
	"github.com/andresmejia3/facebatch/internal/config"
	"github.com/andresmejia3/facebatch/internal/logging"
	"github.com/spf13/cobra"
)

// Options holds shared configuration for the run and recognize commands
type Options struct {
	OutputFile      string
	ProgressFile    string
	MaxConcurrent   int
	NoResume        bool
	PrioritizeKnown bool
	SkipUnknown     bool
}

var (
	// Cfg is the merged configuration shared by subcommands
	Cfg *config.Config

	configPath       string
	apiURL           string
	apiTimeout       time.Duration
	disableSSLVerify bool
	logFile          string
	logLevel         string
)

// Version is the application version.
const Version = "0.0.1"

var rootCmd = &cobra.Command{
	Use:     "facebatch",
	Short:   "Concurrent batch client for a face-recognition API",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		Cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		// Flags beat the config file, which beats the environment
		if cmd.Flags().Changed("api-url") {
			Cfg.API.URL = apiURL
		}
		if cmd.Flags().Changed("timeout") {
			Cfg.API.Timeout = config.Duration(apiTimeout)
		}
		if disableSSLVerify {
			Cfg.API.DisableSSLVerify = true
		}
		if cmd.Flags().Changed("log-file") {
			Cfg.Logging.File = logFile
		}
		if cmd.Flags().Changed("log-level") {
			Cfg.Logging.Level = logLevel
		}

		if err := logging.Init(Cfg.Logging.Level, Cfg.Logging.File); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
}

// APIClient builds the recognition client from the merged configuration.
func APIClient() *client.Client {
	return client.New(client.Options{
		APIURL:           Cfg.API.URL,
		Timeout:          Cfg.API.Timeout.Std(),
		DisableSSLVerify: Cfg.API.DisableSSLVerify,
	})
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", config.DefaultAPIURL, "Recognition API endpoint (or FACEBATCH_API_URL env)")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", 30*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVar(&disableSSLVerify, "disable-ssl-verify", false, "Skip TLS certificate verification")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "batch_recognition.log", "Run log file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
