package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds CLI configuration
type Config struct {
	ServerURL      string        `json:"server_url" yaml:"server_url"`
	Format         string        `json:"format" yaml:"format"`
	Quiet          bool          `json:"quiet" yaml:"quiet"`
	NoColor        bool          `json:"no_color" yaml:"no_color"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:8080",
		Format:         "table",
		Quiet:          false,
		NoColor:        false,
		RequestTimeout: 30 * time.Second,
	}
}

// ApplyFlags overrides configuration values with explicitly set CLI flags
func (c *Config) ApplyFlags(serverFlag, formatFlag string, quietFlag, noColorFlag bool, timeoutFlag time.Duration) {
	if serverFlag != "" {
		c.ServerURL = serverFlag
	}
	if formatFlag != "" {
		c.Format = formatFlag
	}
	if quietFlag {
		c.Quiet = true
	}
	if noColorFlag {
		c.NoColor = true
	}
	if timeoutFlag > 0 {
		c.RequestTimeout = timeoutFlag
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	parsed, err := url.Parse(c.ServerURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("invalid server URL format: %s", c.ServerURL)
	}

	switch c.Format {
	case "table", "json":
	default:
		return fmt.Errorf("invalid format: %s (must be one of: table, json)", c.Format)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	return nil
}
