package cmd

import (
	"github.com/spf13/cobra"

	"admission-analytics/internal/dashboard"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the admission analytics summary",
	Long: `Show the headline counts, applicants per program and the application
trend between --from and --to. Both bounds default to the first and last
dates in the data.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
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

	return formatter.PrintSummary(controller.Data(), controller.FromDate(), controller.ToDate(), controller.FilteredTrends())
}
