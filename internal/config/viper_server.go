package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by both binaries
const EnvPrefix = "AA"

// LoadServerConfigWithViper loads server configuration using Viper
func LoadServerConfigWithViper(v *viper.Viper) (*Config, error) {
	// Set defaults
	setServerDefaults(v)

	// Set up environment variable binding
	setupServerEnvBinding(v)

	// Load configuration file if specified
	if err := loadConfigFile(v, "config"); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Unmarshal configuration
	config := &Config{}
	if err := unmarshalServerConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setServerDefaults sets default values for server configuration
func setServerDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.path", "./analytics.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")

	// Mock endpoint defaults
	v.SetDefault("mock.response_delay", "500ms")
	v.SetDefault("mock.seed_file", "")
	v.SetDefault("mock.cache_ttl", "10s")
}

// setupServerEnvBinding sets up environment variable binding for server configuration
func setupServerEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server.port":             "SERVER_PORT",
		"server.host":             "SERVER_HOST",
		"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",
		"database.path":           "DATABASE_PATH",
		"logging.level":           "LOGGING_LEVEL",
		"mock.response_delay":     "MOCK_RESPONSE_DELAY",
		"mock.seed_file":          "MOCK_SEED_FILE",
		"mock.cache_ttl":          "MOCK_CACHE_TTL",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, EnvPrefix+"_"+envSuffix)
	}
}

// loadConfigFile reads the config file set on v, or searches the default
// locations for name.{yaml,json,toml}. Only an explicitly set file is required
// to exist.
func loadConfigFile(v *viper.Viper, name string) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.admission-analytics")
		v.SetConfigName(name)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}

// unmarshalServerConfig unmarshals Viper configuration into Config struct
func unmarshalServerConfig(v *viper.Viper, config *Config) error {
	config.ServerPort = v.GetString("server.port")
	config.ServerHost = v.GetString("server.host")
	config.DBPath = v.GetString("database.path")
	config.LogLevel = v.GetString("logging.level")
	config.SeedFile = v.GetString("mock.seed_file")

	var err error
	config.ResponseDelay, err = time.ParseDuration(v.GetString("mock.response_delay"))
	if err != nil {
		return fmt.Errorf("invalid response delay: %w", err)
	}

	config.CacheTTL, err = time.ParseDuration(v.GetString("mock.cache_ttl"))
	if err != nil {
		return fmt.Errorf("invalid cache TTL: %w", err)
	}

	config.ShutdownTimeout, err = time.ParseDuration(v.GetString("server.shutdown_timeout"))
	if err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	return nil
}

// LoadServerConfig loads server configuration using a fresh Viper instance
func LoadServerConfig() (*Config, error) {
	return LoadServerConfigWithViper(viper.New())
}

// LoadServerConfigWithFile loads server configuration from a specific file
func LoadServerConfigWithFile(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadServerConfigWithViper(v)
}

// LoadServerConfigWithEnvFile loads the .env file (".env" when envFile is
// empty) and then the server configuration
func LoadServerConfigWithEnvFile(envFile, configFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	if configFile != "" {
		return LoadServerConfigWithFile(configFile)
	}
	return LoadServerConfig()
}
