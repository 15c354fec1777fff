package cmd

import (
	"github.com/spf13/cobra"

	"admission-analytics/internal/dashboard"
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show the application trend for a date range",
	Long:  `Show the daily application counts between --from and --to, inclusive.`,
	RunE:  runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	if err := validateDates(fromDate, toDate); err != nil {
		return err
	}

	cfg, formatter, controller, closeLog, err := loadSnapshot(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	if controller.Status() != dashboard.StatusLoaded {
		if cfg.Format == "json" {
			formatter.PrintNoData()
		}
		return errNoData
	}

	if err := applyRange(controller, fromDate, toDate); err != nil {
		return err
	}

	return formatter.PrintTrends(controller.FilteredTrends())
}
