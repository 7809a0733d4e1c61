package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configCmd(t *testing.T, path string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "", "")
	if path != "" {
		require.NoError(t, cmd.Flags().Set("config", path))
	}
	return cmd
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hoodctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSessionConfigDefaults(t *testing.T) {
	cfg, err := loadSessionConfig(configCmd(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 18*time.Second, cfg.PollInterval)
	assert.True(t, cfg.ImmediateRefresh)
	assert.Equal(t, 5, cfg.MaxConnectAttempts)
}

func TestLoadSessionConfigOverrides(t *testing.T) {
	path := writeConfigFile(t, `
poll_interval: 5s
immediate_refresh: false
max_connect_attempts: 2
backoff_max: 1m30s
`)

	cfg, err := loadSessionConfig(configCmd(t, path))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.False(t, cfg.ImmediateRefresh)
	assert.Equal(t, 2, cfg.MaxConnectAttempts)
	assert.Equal(t, 90*time.Second, cfg.BackoffMax)

	// Untouched keys keep their defaults.
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.Equal(t, 15*time.Second, cfg.OperationTimeout)
}

func TestLoadSessionConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparseable duration", "poll_interval: soon"},
		{"negative duration", "backoff_base: -2s"},
		{"zero attempts", "max_connect_attempts: 0"},
		{"broken yaml", "poll_interval: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			_, err := loadSessionConfig(configCmd(t, path))
			assert.Error(t, err)
		})
	}
}

func TestLoadSessionConfigMissingFile(t *testing.T) {
	_, err := loadSessionConfig(configCmd(t, filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}
