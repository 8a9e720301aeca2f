// Package config loads runtime configuration from an optional YAML file, an
// optional .env file and FLOWTURI_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ThatOrJohn/flowturi-designer/internal/core/simulation"
	"github.com/ThatOrJohn/flowturi-designer/pkg/serialization"
)

// EnvPrefix is prepended to every environment variable, e.g. FLOWTURI_LOG_LEVEL.
const EnvPrefix = "FLOWTURI"

// Sink names accepted by export.sink.
const (
	SinkFile     = "file"
	SinkArchive  = "archive"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkMemory   = "memory"
)

// Sinks lists every supported export sink.
var Sinks = []string{SinkFile, SinkArchive, SinkSQLite, SinkPostgres, SinkMemory}

// ErrInvalidConfig is wrapped by every Validate failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig        `mapstructure:"server"`
	Log        LogConfig           `mapstructure:"log"`
	Simulation simulation.Settings `mapstructure:"simulation"`
	Export     ExportConfig        `mapstructure:"export"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type ExportConfig struct {
	Dir         string `mapstructure:"dir"`
	Sink        string `mapstructure:"sink"`
	Compression string `mapstructure:"compression"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	defaults := simulation.DefaultSettings()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Simulation: defaults,
		Export: ExportConfig{
			Dir:         ".",
			Sink:        SinkFile,
			Compression: string(serialization.CompressionZstd),
			SQLitePath:  "flowturi.db",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("simulation.total_duration", d.Simulation.TotalDuration)
	v.SetDefault("simulation.interval", d.Simulation.Interval)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.sink", d.Export.Sink)
	v.SetDefault("export.compression", d.Export.Compression)
	v.SetDefault("export.sqlite_path", d.Export.SQLitePath)
	v.SetDefault("export.postgres_dsn", d.Export.PostgresDSN)
}

// Options controls where Load looks for configuration.
type Options struct {
	// File is a YAML config file; empty means none.
	File string
	// EnvFiles are .env files loaded into the process environment. Missing
	// files are ignored. Variables already set are never overwritten.
	EnvFiles []string
}

// Load reads configuration from file and environment.
func Load(opts Options) (*Config, error) {
	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return fmt.Errorf("%w: simulation: %w", ErrInvalidConfig, err)
	}

	if !isKnownSink(c.Export.Sink) {
		return fmt.Errorf("%w: export.sink %q is not one of %s", ErrInvalidConfig, c.Export.Sink, strings.Join(Sinks, ", "))
	}
	if _, err := serialization.ParseCompression(c.Export.Compression); err != nil {
		return fmt.Errorf("%w: export.compression: %w", ErrInvalidConfig, err)
	}
	if c.Export.Sink == SinkPostgres && c.Export.PostgresDSN == "" {
		return fmt.Errorf("%w: export.postgres_dsn is required for the postgres sink", ErrInvalidConfig)
	}
	if c.Export.Sink == SinkSQLite && c.Export.SQLitePath == "" {
		return fmt.Errorf("%w: export.sqlite_path is required for the sqlite sink", ErrInvalidConfig)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log.format %q must be json or console", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// Warnings returns non-fatal issues worth reporting at startup.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Simulation.TotalTicks() > 10000 {
		warnings = append(warnings, fmt.Sprintf("simulation settings produce %d ticks per export", c.Simulation.TotalTicks()))
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < time.Second {
		warnings = append(warnings, fmt.Sprintf("server.write_timeout %s is shorter than one second", c.Server.WriteTimeout))
	}

	return warnings
}

func isKnownSink(name string) bool {
	for _, s := range Sinks {
		if s == name {
			return true
		}
	}
	return false
}
