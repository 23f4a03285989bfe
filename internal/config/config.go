package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the chatbot service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	LogLevel  string
	LogFormat string

	// DATABASE_URL enables the postgres outlet directory; empty keeps the
	// seeded in-memory table.
	DatabaseURL string

	MaxTurns      int
	ContextWindow int
	MaxMessageLen int
	MaxQueryLen   int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "chatbot"),
		AllowAnyOrigin:   false,
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		MaxTurns:         50,
		ContextWindow:    5,
		MaxMessageLen:    1000,
		MaxQueryLen:      200,
		ShutdownTimeout:  15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxTurns, err = intFromEnv("CHAT_MAX_TURNS", cfg.MaxTurns)
	if err != nil {
		return Config{}, err
	}
	cfg.ContextWindow, err = intFromEnv("CHAT_CONTEXT_WINDOW", cfg.ContextWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxMessageLen, err = intFromEnv("CHAT_MAX_MESSAGE_LEN", cfg.MaxMessageLen)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxQueryLen, err = intFromEnv("CHAT_MAX_QUERY_LEN", cfg.MaxQueryLen)
	if err != nil {
		return Config{}, err
	}

	if cfg.ShutdownTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be at least 1s")
	}
	if cfg.MaxTurns <= 0 {
		return Config{}, fmt.Errorf("CHAT_MAX_TURNS must be positive")
	}
	if cfg.ContextWindow <= 0 {
		return Config{}, fmt.Errorf("CHAT_CONTEXT_WINDOW must be positive")
	}
	if cfg.ContextWindow > cfg.MaxTurns {
		return Config{}, fmt.Errorf("CHAT_CONTEXT_WINDOW must not exceed CHAT_MAX_TURNS")
	}
	if cfg.MaxMessageLen <= 0 {
		return Config{}, fmt.Errorf("CHAT_MAX_MESSAGE_LEN must be positive")
	}
	if cfg.MaxQueryLen <= 0 {
		return Config{}, fmt.Errorf("CHAT_MAX_QUERY_LEN must be positive")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("LOG_LEVEL must be one of debug|info|warn|error")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or console")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(envTrimmed(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
