package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mangabridge/pkg/types"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MANGABRIDGE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Convert.OutDir)
	assert.Equal(t, ":8190", cfg.Serve.Addr)
	assert.Equal(t, int64(64<<20), cfg.Serve.MaxUploadBytes)
	assert.Equal(t, 5*time.Second, cfg.Serve.ShutdownTimeout)
	assert.True(t, cfg.Ledger.Enabled)
	assert.NotEmpty(t, cfg.Ledger.Path)
	assert.Equal(t, 20, cfg.Ledger.MaxResults)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mangabridge.yaml")
	content := `convert:
  out_dir: /tmp/aidoku
  native_dates: true
serve:
  shutdown_timeout: 30s
ledger:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("MANGABRIDGE_SERVE_ADDR", "127.0.0.1:9000")

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/aidoku", cfg.Convert.OutDir)
	assert.True(t, cfg.Convert.NativeDates)
	assert.Equal(t, 30*time.Second, cfg.Serve.ShutdownTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	assert.False(t, cfg.Ledger.Enabled)
}

func TestFormatRunTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, formatRunTable(&buf, nil))
		assert.Equal(t, "No runs recorded.\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		runs := []types.Run{
			{
				ID:        "0b6f3a4e-0000-4000-8000-000000000001",
				Input:     "/very/long/path/to/some/directory/with/backups/suwatte-2026.json",
				Origin:    "cli",
				Status:    types.ConversionDone,
				Counts:    types.Counts{Library: 12},
				Warnings:  2,
				StartedAt: time.Now(),
			},
		}
		var buf bytes.Buffer
		require.NoError(t, formatRunTable(&buf, runs))
		out := buf.String()
		assert.Contains(t, out, "0b6f3a4e-0000-4000-8000-000000000001")
		assert.Contains(t, out, "converted")
		assert.Contains(t, out, "...")
		assert.Contains(t, out, "suwatte-2026.json")
		assert.Contains(t, out, "\n1 runs\n")
	})
}

func TestVersionLine(t *testing.T) {
	assert.Equal(t, "mangabridge v1.2.3 (aidoku backup format "+types.AidokuFormatVersion+")", versionLine("v1.2.3"))
}
