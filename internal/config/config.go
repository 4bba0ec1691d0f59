// Package config loads imgqa command settings from the environment with
// flag overrides.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the command settings.
type Config struct {
	Addr          string        // HTTP listen address; empty = CLI mode
	UserAgent     string        // outgoing User-Agent ("" = library default)
	MaxBytes      int64         // max body bytes per image
	Timeout       time.Duration // per-request timeout
	Concurrency   int           // batch workers
	RatePerSec    float64       // fetch rate limit, 0 = unlimited
	CropThreshold float64       // padding ratio that requires a crop
	Tolerance     int           // intensity delta below white that counts as content
	HeadersOnly   bool          // skip pixel analysis
	LogLevel      slog.Level
	LogFile       string // rolling log file; empty = stderr
}

// Load reads IMGQA_* environment variables, then parses args as flags on top.
// It returns the remaining positional arguments (image URLs).
func Load(args []string) (*Config, []string, error) {
	cfg := &Config{
		Addr:          getEnv("IMGQA_ADDR", ""),
		UserAgent:     getEnv("IMGQA_USER_AGENT", ""),
		LogFile:       getEnv("IMGQA_LOG_FILE", ""),
		MaxBytes:      getEnvInt64("IMGQA_MAX_BYTES", 64<<20),
		Timeout:       getEnvDuration("IMGQA_TIMEOUT", 30*time.Second),
		Concurrency:   int(getEnvInt64("IMGQA_CONCURRENCY", 3)),
		RatePerSec:    getEnvFloat("IMGQA_RATE", 0),
		CropThreshold: getEnvFloat("IMGQA_CROP_THRESHOLD", 1.0),
		Tolerance:     int(getEnvInt64("IMGQA_TOLERANCE", 1)),
	}
	level := getEnv("IMGQA_LOG_LEVEL", "info")

	fs := flag.NewFlagSet("imgqa", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "serve", cfg.Addr, "serve HTTP on this address instead of analysing URL arguments")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent for image requests")
	fs.Int64Var(&cfg.MaxBytes, "max-bytes", cfg.MaxBytes, "maximum image body size in bytes")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "concurrent analyses")
	fs.Float64Var(&cfg.RatePerSec, "rate", cfg.RatePerSec, "maximum image fetches per second (0 = unlimited)")
	fs.Float64Var(&cfg.CropThreshold, "crop-threshold", cfg.CropThreshold, "padding ratio above which a crop is required")
	fs.IntVar(&cfg.Tolerance, "tolerance", cfg.Tolerance, "intensity delta below 255 that counts as content (0 = anything not pure white)")
	fs.BoolVar(&cfg.HeadersOnly, "headers-only", false, "check HTTP headers only, skip download and pixel analysis")
	fs.StringVar(&level, "log-level", level, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this rolling file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if cfg.Concurrency <= 0 {
		return nil, nil, fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.MaxBytes <= 0 {
		return nil, nil, fmt.Errorf("max bytes must be positive, got %d", cfg.MaxBytes)
	}
	if cfg.Timeout <= 0 {
		return nil, nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.CropThreshold <= 0 {
		return nil, nil, fmt.Errorf("crop threshold must be positive, got %g", cfg.CropThreshold)
	}
	if cfg.Tolerance < 0 || cfg.Tolerance > 255 {
		return nil, nil, fmt.Errorf("tolerance must be within 0-255, got %d", cfg.Tolerance)
	}

	return cfg, fs.Args(), nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}
