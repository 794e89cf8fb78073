package cli

import (
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize all data caches",
	Long: `Walk the wiki page tree of every configured project, download the
mail archives for the configured window, and build all caches from
scratch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Pipeline().Init(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
