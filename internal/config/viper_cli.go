package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"admission-analytics/internal/cli"
)

// LoadCLIConfigWithViper loads CLI configuration using Viper
func LoadCLIConfigWithViper(v *viper.Viper) (*cli.Config, error) {
	// Set defaults
	setCLIDefaults(v)

	// Set up environment variable binding
	setupCLIEnvBinding(v)

	// Load configuration file if specified
	if err := loadConfigFile(v, "cli"); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Unmarshal configuration
	config := &cli.Config{}
	if err := unmarshalCLIConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setCLIDefaults sets default values for CLI configuration
func setCLIDefaults(v *viper.Viper) {
	defaults := cli.DefaultConfig()
	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("quiet", defaults.Quiet)
	v.SetDefault("no_color", defaults.NoColor)
	v.SetDefault("request_timeout", defaults.RequestTimeout.String())
}

// setupCLIEnvBinding sets up environment variable binding for CLI configuration
func setupCLIEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	envBindings := map[string]string{
		"server_url":      "CLI_SERVER_URL",
		"format":          "CLI_FORMAT",
		"quiet":           "CLI_QUIET",
		"no_color":        "CLI_NO_COLOR",
		"request_timeout": "CLI_TIMEOUT",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, EnvPrefix+"_"+envSuffix)
	}

	// Honor the NO_COLOR convention as well
	v.BindEnv("no_color", EnvPrefix+"_CLI_NO_COLOR", "NO_COLOR")
}

// unmarshalCLIConfig unmarshals Viper configuration into CLI Config struct
func unmarshalCLIConfig(v *viper.Viper, config *cli.Config) error {
	config.ServerURL = v.GetString("server_url")
	config.Format = v.GetString("format")
	config.Quiet = v.GetBool("quiet")
	config.NoColor = v.GetBool("no_color")

	// Accept a duration ("45s") or a bare number of seconds
	timeoutStr := v.GetString("request_timeout")
	if duration, err := time.ParseDuration(timeoutStr); err == nil {
		config.RequestTimeout = duration
		return nil
	}

	seconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid request timeout: %s", timeoutStr)
	}
	if seconds <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d seconds", seconds)
	}
	config.RequestTimeout = time.Duration(seconds) * time.Second

	return nil
}

// LoadCLIConfig loads CLI configuration using a fresh Viper instance
func LoadCLIConfig() (*cli.Config, error) {
	return LoadCLIConfigWithViper(viper.New())
}

// LoadCLIConfigWithFile loads CLI configuration from a specific file
func LoadCLIConfigWithFile(configFile string) (*cli.Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	return LoadCLIConfigWithViper(v)
}
