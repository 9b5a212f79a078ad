package config

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of a container and of the programs built
// around it.
type Config struct {
	Env             string // local | production | testing
	LogLevel        slog.Level
	LogFormat       string // text | json
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// Load reads the given .env files (default ".env") and populates a Config
// from environment variables. Variables already set in the environment win
// over values from the files.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		// missing files are fine outside local development
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("skipping env file", "file", file, "error", err)
		}
	}

	return &Config{
		Env:             env("DIGO_ENV", "local"),
		LogLevel:        envLevel("DIGO_LOG_LEVEL", slog.LevelInfo),
		LogFormat:       strings.ToLower(env("DIGO_LOG_FORMAT", "text")),
		HTTPAddr:        env("DIGO_HTTP_ADDR", ":8080"),
		ShutdownTimeout: envDuration("DIGO_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// NewLogger builds a slog.Logger writing to w in the configured format and
// level. A nil w writes to os.Stderr.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: c.LogLevel}

	var h slog.Handler
	if c.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("env", c.Env)
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return fallback
	}
	return level
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
