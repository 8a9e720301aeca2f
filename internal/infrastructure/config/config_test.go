package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 60, cfg.Simulation.TotalDuration)
	assert.Equal(t, 15, cfg.Simulation.Interval)
	assert.Equal(t, SinkFile, cfg.Export.Sink)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "flowturi.yaml", `
server:
  addr: ":9090"
  write_timeout: 1m
log:
  level: debug
  format: console
simulation:
  total_duration: 30
  interval: 60
export:
  sink: sqlite
  sqlite_path: /tmp/exports.db
`)

	cfg, err := Load(Options{File: path})
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Simulation.TotalDuration)
	assert.Equal(t, 60, cfg.Simulation.Interval)
	assert.Equal(t, SinkSQLite, cfg.Export.Sink)
	assert.Equal(t, "/tmp/exports.db", cfg.Export.SQLitePath)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "flowturi.yaml", "simulation:\n  interval: 60\n")
	t.Setenv("FLOWTURI_SIMULATION_INTERVAL", "30")
	t.Setenv("FLOWTURI_EXPORT_DIR", "/var/exports")

	cfg, err := Load(Options{File: path})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Simulation.Interval)
	assert.Equal(t, "/var/exports", cfg.Export.Dir)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "FLOWTURI_LOG_LEVEL=warn\nFLOWTURI_EXPORT_COMPRESSION=gzip\n")
	t.Cleanup(func() {
		os.Unsetenv("FLOWTURI_LOG_LEVEL")
		os.Unsetenv("FLOWTURI_EXPORT_COMPRESSION")
	})

	cfg, err := Load(Options{EnvFiles: []string{envFile, filepath.Join(t.TempDir(), "missing.env")}})
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "gzip", cfg.Export.Compression)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_InvalidSettings(t *testing.T) {
	t.Setenv("FLOWTURI_SIMULATION_INTERVAL", "0")

	_, err := Load(Options{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown sink", func(c *Config) { c.Export.Sink = "s3" }, true},
		{"postgres without dsn", func(c *Config) { c.Export.Sink = SinkPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Export.Sink = SinkPostgres
			c.Export.PostgresDSN = "postgres://localhost/flowturi"
		}, false},
		{"sqlite without path", func(c *Config) {
			c.Export.Sink = SinkSQLite
			c.Export.SQLitePath = ""
		}, true},
		{"unknown compression", func(c *Config) { c.Export.Compression = "brotli" }, true},
		{"negative duration", func(c *Config) { c.Simulation.TotalDuration = -1 }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Warnings())

	cfg.Simulation.TotalDuration = 1440
	cfg.Simulation.Interval = 1
	cfg.Server.WriteTimeout = 500 * time.Millisecond
	assert.Len(t, cfg.Warnings(), 2)
}
