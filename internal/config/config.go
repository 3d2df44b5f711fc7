// Package config holds the runtime settings shared by the CLI commands.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvWorkers        = "APISTUB_WORKERS"
	EnvDB             = "APISTUB_DB"
	EnvLogLevel       = "APISTUB_LOG_LEVEL"
	EnvIncludePrivate = "APISTUB_INCLUDE_PRIVATE"
	EnvCacheSize      = "APISTUB_CACHE_SIZE"
)

// Config holds runtime settings.
type Config struct {
	// Workers bounds the number of definitions built concurrently.
	Workers int
	// DBPath is the snapshot database location.
	DBPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// IncludePrivate keeps private members in the node trees.
	IncludePrivate bool
	// CacheSize bounds the resolver's rendered-expression cache. Zero disables it.
	CacheSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   runtime.GOMAXPROCS(0),
		DBPath:    "apistub.db",
		LogLevel:  "info",
		CacheSize: 4096,
	}
}

// Load returns DefaultConfig overridden by the environment. A .env file in
// the working directory is read first when present. The log level is not
// checked here so a flag can still replace it; call Validate once every
// override is applied.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("%s: invalid worker count %q", EnvWorkers, v)
		}

		cfg.Workers = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.DBPath = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := strings.TrimSpace(os.Getenv(EnvIncludePrivate)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvIncludePrivate, err)
		}

		cfg.IncludePrivate = b
	}

	if v := strings.TrimSpace(os.Getenv(EnvCacheSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("%s: invalid cache size %q", EnvCacheSize, v)
		}

		cfg.CacheSize = n
	}

	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}

	return level, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
