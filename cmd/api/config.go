package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"calc-engine/internal/calculator"
)

// config is the process configuration, read from the environment after
// .env has been loaded. Unset and empty variables take the default.
type config struct {
	Addr            string
	MaxSessions     int
	MaxExpression   int
	ShutdownTimeout time.Duration
	Telemetry       bool
	LogLevel        string
}

func loadConfig() (config, error) {
	cfg := config{
		Addr:            envOr("CALC_ADDR", "127.0.0.1:8080"),
		MaxSessions:     calculator.DefaultMaxSessions,
		MaxExpression:   calculator.DefaultMaxInput,
		ShutdownTimeout: 5 * time.Second,
		Telemetry:       true,
		LogLevel:        envOr("CALC_LOG_LEVEL", "info"),
	}

	var err error
	if v := os.Getenv("CALC_MAX_SESSIONS"); v != "" {
		if cfg.MaxSessions, err = positiveInt("CALC_MAX_SESSIONS", v); err != nil {
			return config{}, err
		}
	}
	if v := os.Getenv("CALC_MAX_EXPRESSION"); v != "" {
		if cfg.MaxExpression, err = positiveInt("CALC_MAX_EXPRESSION", v); err != nil {
			return config{}, err
		}
	}
	if v := os.Getenv("CALC_SHUTDOWN_TIMEOUT"); v != "" {
		if cfg.ShutdownTimeout, err = time.ParseDuration(v); err != nil {
			return config{}, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("CALC_TELEMETRY"); v != "" {
		if cfg.Telemetry, err = strconv.ParseBool(v); err != nil {
			return config{}, fmt.Errorf("CALC_TELEMETRY: %w", err)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
