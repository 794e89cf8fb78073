package cli

import (
	"github.com/spf13/cobra"
)

var (
	mailDays      int
	mailOverwrite bool
	mailReprocess bool
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mailing-list archive commands",
}

var mailDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download mailing-list archives",
	Long: `Download the monthly mbox archives covering the requested window.
Archives are by month, so a full month is downloaded even if only one
day of it falls inside the window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Pipeline().DownloadArchives(cmd.Context(), mailDays, mailOverwrite)
	},
}

var mailProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Process downloaded mailing-list archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, cfg, err := buildApp()
		if err != nil {
			return err
		}
		defer application.Close()

		for _, project := range cfg.Projects {
			if _, err := application.Pipeline().ProcessDirectory(cmd.Context(), project, mailReprocess); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailCmd)
	mailCmd.AddCommand(mailDownloadCmd)
	mailCmd.AddCommand(mailProcessCmd)

	mailDownloadCmd.Flags().IntVarP(&mailDays, "days", "d", 365, "days back in time to cover")
	mailDownloadCmd.Flags().BoolVar(&mailOverwrite, "overwrite", false, "replace existing mail archives")
	mailProcessCmd.Flags().BoolVar(&mailReprocess, "overwrite-cache", false, "reprocess archives and overwrite their cache files")
}
