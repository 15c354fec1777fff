package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cliapi "admission-analytics/internal/cli"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API server is reachable",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter := cliapi.NewOutputFormatterWithWriters(cfg.Format, cfg.Quiet, cfg.NoColor, cmd.OutOrStdout(), cmd.ErrOrStderr())

	logger, closeLog, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	_, client, err := newController(cfg, logger)
	if err != nil {
		return err
	}

	if err := client.HealthCheck(cmd.Context()); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess(fmt.Sprintf("API server at %s is healthy", client.GetBaseURL()))
	return nil
}
