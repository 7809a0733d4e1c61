package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hoodlink/hoodlink/pkg/hood"
)

// fileConfig is the YAML shape of a hoodctl config file. Durations are
// strings in time.ParseDuration syntax ("18s", "1m30s"); pointers tell an
// absent key apart from an explicit zero.
type fileConfig struct {
	PollInterval       *string `yaml:"poll_interval"`
	ImmediateRefresh   *bool   `yaml:"immediate_refresh"`
	MaxConnectAttempts *int    `yaml:"max_connect_attempts"`
	BackoffBase        *string `yaml:"backoff_base"`
	BackoffMax         *string `yaml:"backoff_max"`
	OperationTimeout   *string `yaml:"operation_timeout"`
}

// loadSessionConfig returns the session defaults, overridden by the YAML
// file given via --config when present. Absent keys keep their defaults.
func loadSessionConfig(cmd *cobra.Command) (*hood.Config, error) {
	cfg := hood.DefaultConfig()

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := file.apply(cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (f *fileConfig) apply(cfg *hood.Config) error {
	durations := []struct {
		key   string
		raw   *string
		field *time.Duration
	}{
		{"poll_interval", f.PollInterval, &cfg.PollInterval},
		{"backoff_base", f.BackoffBase, &cfg.BackoffBase},
		{"backoff_max", f.BackoffMax, &cfg.BackoffMax},
		{"operation_timeout", f.OperationTimeout, &cfg.OperationTimeout},
	}
	for _, d := range durations {
		if d.raw == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s: must be positive, got %s", d.key, parsed)
		}
		*d.field = parsed
	}

	if f.ImmediateRefresh != nil {
		cfg.ImmediateRefresh = *f.ImmediateRefresh
	}
	if f.MaxConnectAttempts != nil {
		if *f.MaxConnectAttempts < 1 {
			return fmt.Errorf("max_connect_attempts: must be at least 1, got %d", *f.MaxConnectAttempts)
		}
		cfg.MaxConnectAttempts = *f.MaxConnectAttempts
	}
	return nil
}
