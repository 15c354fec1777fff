package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyFlags("", "", false, false, 0)
	assert.Equal(t, DefaultConfig(), cfg, "unset flags leave the config alone")

	cfg.ApplyFlags("http://remote:9000", "json", true, true, 5*time.Second)
	assert.Equal(t, &Config{
		ServerURL:      "http://remote:9000",
		Format:         "json",
		Quiet:          true,
		NoColor:        true,
		RequestTimeout: 5 * time.Second,
	}, cfg)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "Defaults", modify: func(c *Config) {}},
		{name: "HTTPS URL", modify: func(c *Config) { c.ServerURL = "https://analytics.example.com" }},
		{name: "Empty URL", modify: func(c *Config) { c.ServerURL = "  " }, wantErr: "server URL cannot be empty"},
		{name: "Missing scheme", modify: func(c *Config) { c.ServerURL = "localhost:8080" }, wantErr: "invalid server URL format"},
		{name: "Missing host", modify: func(c *Config) { c.ServerURL = "http://" }, wantErr: "invalid server URL format"},
		{name: "Bad format", modify: func(c *Config) { c.Format = "csv" }, wantErr: "invalid format"},
		{name: "Zero timeout", modify: func(c *Config) { c.RequestTimeout = 0 }, wantErr: "request timeout must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
