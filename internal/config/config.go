// Package config loads batch-run configuration from an optional YAML file
// with sensible defaults. Command-line flags override anything set here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when neither flag, config file, nor the
// FACEBATCH_API_URL environment variable provides an endpoint.
const DefaultAPIURL = "http://localhost:8000/api/recognize"

// Duration wraps time.Duration so YAML values like "45s" parse cleanly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all facebatch settings.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds recognition endpoint settings.
type APIConfig struct {
	URL              string   `yaml:"url"`
	Timeout          Duration `yaml:"timeout"`
	DisableSSLVerify bool     `yaml:"disable_ssl_verify"`
}

// BatchConfig holds batch-run settings.
type BatchConfig struct {
	MaxConcurrent   int    `yaml:"max_concurrent"`
	Output          string `yaml:"output"`
	ProgressFile    string `yaml:"progress_file"`
	PrioritizeKnown bool   `yaml:"prioritize_known"`
	SkipUnknown     bool   `yaml:"skip_unknown"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     DefaultAPIURL,
			Timeout: Duration(30 * time.Second),
		},
		Batch: BatchConfig{
			MaxConcurrent: 5,
			Output:        "recognition_results.csv",
			ProgressFile:  "progress.txt",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "batch_recognition.log",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// returns the defaults with only the environment applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment applies only when neither file nor flag set the URL
	if url := os.Getenv("FACEBATCH_API_URL"); url != "" && cfg.API.URL == DefaultAPIURL {
		cfg.API.URL = url
	}

	if cfg.Batch.MaxConcurrent < 1 {
		cfg.Batch.MaxConcurrent = 1
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = Duration(30 * time.Second)
	}
	return cfg, nil
}
