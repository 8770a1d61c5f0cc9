package cmd

import (
	"net/url"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagAnnouncementsAll bool

var announcementsCmd = &cobra.Command{
	Use:     "announcements",
	Aliases: []string{"oznameni"},
	Short:   "Read the announcement board",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		params := url.Values{}
		if flagAnnouncementsAll {
			if err := requireAdmin(); err != nil {
				return err
			}
			params.Set("all", "true")
		}

		var resp api.Response[[]api.Announcement]
		if err := apiClient.Get("/announcements", params, &resp); err != nil {
			return explain(err, "listing announcements")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.Announcements(resp.Data)
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp api.Response[api.Dashboard]
		if err := apiClient.Get("/dashboard", nil, &resp); err != nil {
			return explain(err, "loading dashboard")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.Dashboard(resp.Data)
		return nil
	},
}

func init() {
	announcementsCmd.Flags().BoolVar(&flagAnnouncementsAll, "all", false, "Include inactive and expired announcements (admin)")
	rootCmd.AddCommand(announcementsCmd, dashboardCmd)
}
