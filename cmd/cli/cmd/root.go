package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"admission-analytics/internal/analytics"
	"admission-analytics/internal/api"
	cliapi "admission-analytics/internal/cli"
	"admission-analytics/internal/config"
	"admission-analytics/internal/dashboard"
)

var (
	serverURL   string
	format      string
	quiet       bool
	noColor     bool
	timeout     time.Duration
	configFile  string
	logFile     string
	interactive bool
	fromDate    string
	toDate      string
)

// errNoData is returned when the snapshot could not be loaded
var errNoData = errors.New(cliapi.NoDataMessage)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "admission-analytics",
	Short: "Admission analytics dashboard client",
	Long: `Admission Analytics fetches the admission analytics snapshot from the API
and shows the headline counts, applicants per program and the application
trend for a date range.

Run without a subcommand in a terminal to open the interactive dashboard;
otherwise the summary is printed.`,
	Version: "1.0.0",
	RunE:    runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags; empty values defer to the config file and environment
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "API server address (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (minimal output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable color output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default 30s)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is cli.yaml in ., ./config or $HOME/.admission-analytics)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append diagnostic logs to this file")
	rootCmd.PersistentFlags().StringVar(&fromDate, "from", "", "Start of the trend range, YYYY-MM-DD (default first trend date)")
	rootCmd.PersistentFlags().StringVar(&toDate, "to", "", "End of the trend range, YYYY-MM-DD (default last trend date)")

	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Force the interactive dashboard")
}

// loadConfig layers flags over the config file and environment
func loadConfig() (*cliapi.Config, error) {
	var cfg *cliapi.Config
	var err error
	if configFile != "" {
		cfg, err = config.LoadCLIConfigWithFile(configFile)
	} else {
		cfg, err = config.LoadCLIConfig()
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyFlags(serverURL, format, quiet, noColor, timeout)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes to --log-file when set, otherwise to fallback
func newLogger(fallback io.Writer) (*slog.Logger, func(), error) {
	out := fallback
	closer := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = func() { f.Close() }
	}

	level := slog.LevelWarn
	if logFile != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}

// newController builds a dashboard controller backed by the API client
func newController(cfg *cliapi.Config, logger *slog.Logger) (*dashboard.Controller, *api.Client, error) {
	client, err := api.NewClient(&api.ClientConfig{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return dashboard.NewController(client, logger), client, nil
}

// applyRange validates and applies the --from/--to flags. Empty flags keep
// the bounds derived from the loaded data.
func applyRange(controller *dashboard.Controller, from, to string) error {
	if err := validateDates(from, to); err != nil {
		return err
	}

	if from != "" {
		controller.SetFromDate(from)
	}
	if to != "" {
		controller.SetToDate(to)
	}
	return nil
}

// validateDates checks that every non-empty date parses as YYYY-MM-DD
func validateDates(dates ...string) error {
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, err := analytics.ParseDate(d); err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", d)
		}
	}
	return nil
}

// loadSnapshot runs a single load with a progress spinner for table output
func loadSnapshot(ctx context.Context, cmd *cobra.Command) (*cliapi.Config, *cliapi.OutputFormatter, *dashboard.Controller, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	formatter := cliapi.NewOutputFormatterWithWriters(cfg.Format, cfg.Quiet, cfg.NoColor, cmd.OutOrStdout(), cmd.ErrOrStderr())

	logger, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	controller, _, err := newController(cfg, logger)
	if err != nil {
		closeLog()
		return nil, nil, nil, nil, err
	}

	var spinner *cliapi.ProgressSpinner
	if !cfg.Quiet && cfg.Format == "table" {
		spinner = cliapi.NewProgressSpinner("Fetching admission analytics", cfg.NoColor)
		spinner.Start()
	}

	controller.Load(ctx)

	if spinner != nil {
		spinner.Stop()
	}

	return cfg, formatter, controller, closeLog, nil
}

// shouldUseInteractiveMode reports whether the dashboard should open
func shouldUseInteractiveMode(cfg *cliapi.Config, explicit, isTTY bool) bool {
	if explicit {
		return true
	}
	return cfg.Format == "table" && !cfg.Quiet && isTTY
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if shouldUseInteractiveMode(cfg, interactive, isatty.IsTerminal(os.Stdout.Fd())) {
		return runDashboard(cmd, args)
	}
	return runSummary(cmd, args)
}
