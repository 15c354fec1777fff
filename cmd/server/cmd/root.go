// Copyright 2024 Package Tracking System
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"admission-analytics/internal/analytics"
	"admission-analytics/internal/config"
	"admission-analytics/internal/database"
	"admission-analytics/internal/server"
)

const (
	// Version information
	Version   = "1.0.0"
	BuildDate = "development"
)

var (
	configFile string
	envFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "analytics-server",
	Short: "Mock admission analytics API server",
	Long: `Admission Analytics Server v1.0.0

DESCRIPTION:
    Serves the admission analytics snapshot at /api/v1/analytics/admissions.
    The snapshot lives in SQLite and is seeded on first start, either from the
    built-in sample data or from a YAML/JSON fixture file.

CONFIGURATION:
    Configuration is read from a config file (config.yaml in ., ./config or
    $HOME/.admission-analytics), a .env file and environment variables:

        AA_SERVER_PORT              - Listen port (default: 8080)
        AA_SERVER_HOST              - Listen host (default: localhost)
        AA_SERVER_SHUTDOWN_TIMEOUT  - Graceful shutdown timeout (default: 30s)
        AA_DATABASE_PATH            - SQLite database path (default: ./analytics.db)
        AA_LOGGING_LEVEL            - debug, info, warn, error (default: info)
        AA_MOCK_RESPONSE_DELAY      - Artificial latency on /api/v1 (default: 500ms)
        AA_MOCK_SEED_FILE           - Fixture used for the first seed
        AA_MOCK_CACHE_TTL           - In-memory snapshot cache lifetime, 0s disables (default: 10s)

EXAMPLES:
    # Serve on another port without latency
    AA_SERVER_PORT=9090 AA_MOCK_RESPONSE_DELAY=0s analytics-server

    # Replace the stored snapshot with a fixture
    analytics-server seed --file fixtures/may.yaml`,
	Version: Version,
	RunE:    runServer,
}

// seedCmd replaces the stored snapshot
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the stored analytics snapshot",
	Long: `Replace the stored analytics snapshot with the built-in sample data or
the fixture given by --file. The fixture is validated before anything is
written.`,
	RunE: runSeed,
}

var seedFile string

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is config.yaml in ., ./config or $HOME/.admission-analytics)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file loaded before configuration (default is .env)")

	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML or JSON fixture (default is the built-in sample data)")
	rootCmd.AddCommand(seedCmd)
}

// loadConfiguration loads the .env file, the config file and the environment
func loadConfiguration() (*config.Config, error) {
	cfg, err := config.LoadServerConfigWithEnvFile(envFile, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

// loadSeed returns the fixture at path, or the sample data when path is empty
func loadSeed(path string) (*analytics.AdmissionAnalytics, error) {
	if path == "" {
		return analytics.SampleData(), nil
	}
	return analytics.LoadFixture(path)
}

// runServer is the main execution function for the API server
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info("Starting admission analytics server",
		"version", Version,
		"build_date", BuildDate)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "db_path", cfg.DBPath)
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger.Info("Database initialized", "db_path", cfg.DBPath)

	seed, err := loadSeed(cfg.SeedFile)
	if err != nil {
		logger.Error("Failed to load seed data", "error", err, "seed_file", cfg.SeedFile)
		return err
	}

	seeded, err := db.Analytics.SeedIfEmpty(cmd.Context(), seed)
	if err != nil {
		logger.Error("Failed to seed database", "error", err)
		return fmt.Errorf("failed to seed database: %w", err)
	}
	if seeded {
		logger.Info("Database seeded", "seed_file", cfg.SeedFile, "trend_points", len(seed.ApplicationTrends))
	}

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: server.NewRouter(db, server.RouterConfig{
			ResponseDelay: cfg.ResponseDelay,
			CacheTTL:      cfg.CacheTTL,
		}, logger),

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Server configuration",
		"address", cfg.Address(),
		"response_delay", cfg.ResponseDelay,
		"cache_ttl", cfg.CacheTTL,
		"log_level", cfg.LogLevel)

	if err := server.HandleSignals(cmd.Context(), srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", "error", err)
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// runSeed replaces the stored snapshot
func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	seed, err := loadSeed(seedFile)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Analytics.Seed(cmd.Context(), seed); err != nil {
		return err
	}

	source := seedFile
	if source == "" {
		source = "built-in sample data"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s from %s (%d programs, %d trend points)\n",
		cfg.DBPath, source, len(seed.ApplicationsPerProgram), len(seed.ApplicationTrends))
	if cfg.CacheTTL > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "A running server picks up the new snapshot within %s\n", cfg.CacheTTL)
	}
	return nil
}
