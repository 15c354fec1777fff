package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Config holds the analytics server configuration
type Config struct {
	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration

	// Database configuration
	DBPath string

	// Logging
	LogLevel string

	// Mock endpoint behavior
	ResponseDelay time.Duration
	SeedFile      string
	CacheTTL      time.Duration
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	// Validate server port
	if c.ServerPort == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	// Check if port is a valid number
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.ServerPort)
	}

	// Validate database path
	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.ResponseDelay < 0 {
		return fmt.Errorf("response delay must be non-negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must be non-negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[c.LogLevel]; ok {
		return level
	}
	return slog.LevelInfo
}
