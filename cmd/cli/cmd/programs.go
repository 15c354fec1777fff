package cmd

import (
	"github.com/spf13/cobra"

	"admission-analytics/internal/dashboard"
)

var programsCmd = &cobra.Command{
	Use:     "programs",
	Aliases: []string{"ls"},
	Short:   "Show applicants per program",
	RunE:    runPrograms,
}

func init() {
	rootCmd.AddCommand(programsCmd)
}

func runPrograms(cmd *cobra.Command, args []string) error {
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

	return formatter.PrintPrograms(controller.Data().ApplicationsPerProgram)
}
