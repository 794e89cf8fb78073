package cli

import (
	"github.com/spf13/cobra"
)

var wikiRebuild bool

var wikiCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Wiki page-tree commands",
}

var wikiDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and classify proposal wiki pages",
	Long: `Walk the proposal index page tree of every configured project,
classify each proposal page, and merge the results into the registry
cache. Known proposals are never replaced; use --rebuild to discard
the cache and start over.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cfg, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		for _, project := range cfg.Projects {
			if err := application.Pipeline().HarvestWiki(cmd.Context(), project, wikiRebuild); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(wikiCmd)
	wikiCmd.AddCommand(wikiDownloadCmd)

	wikiDownloadCmd.Flags().BoolVar(&wikiRebuild, "rebuild", false, "discard the registry cache and re-download everything")
}
