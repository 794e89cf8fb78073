package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the standalone status page from the caches",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cfg, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Pipeline().Report(cmd.Context(), time.Now().In(cfg.Scheduler.Location()))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
