package cli

import (
	"github.com/spf13/cobra"
)

var updateWatch bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the cached wiki and mail archive data",
	Long: `Add newly discovered proposals to the registry, re-download the
newest monthly mail archive, and merge the fresh mentions into the
persisted store. With --watch the update keeps running on the
configured cron expression.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		if updateWatch {
			return application.RunScheduled(cmd.Context())
		}
		return application.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&updateWatch, "watch", false, "keep updating on the configured cron schedule")
}
