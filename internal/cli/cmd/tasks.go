package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"ukoly"},
	Short:   "List and tick off tasks",
}

var (
	flagTaskStatus string
	flagTaskShift  string
	flagTaskLimit  int
)

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		params := url.Values{}
		if flagTaskStatus != "" {
			params.Set("status", flagTaskStatus)
		}
		if flagTaskShift != "" {
			params.Set("shiftId", flagTaskShift)
		}
		if flagTaskLimit > 0 {
			params.Set("limit", strconv.Itoa(flagTaskLimit))
		}

		var resp api.Response[[]api.Task]
		if err := apiClient.Get("/tasks", params, &resp); err != nil {
			return explain(err, "listing tasks")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.TaskTable(resp.Data)
		return nil
	},
}

var tasksToggleCmd = &cobra.Command{
	Use:   "toggle <id> [id...]",
	Short: "Flip tasks between pending and completed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var toggled []api.Task
		for _, id := range splitIDs(args) {
			var resp api.Response[api.Task]
			if err := apiClient.Post("/tasks/"+url.PathEscape(id)+"/toggle", nil, &resp); err != nil {
				return explain(err, "toggling "+id)
			}
			toggled = append(toggled, resp.Data)
			if !flagJSON {
				fmt.Printf("%s %s\n", output.Checkbox(resp.Data.Status), resp.Data.Title)
			}
		}
		if flagJSON {
			output.JSON(toggled)
		}
		return nil
	},
}

func init() {
	tasksListCmd.Flags().StringVar(&flagTaskStatus, "status", "", "Filter by status: pending or completed")
	tasksListCmd.Flags().StringVar(&flagTaskShift, "shift", "", "Only tasks attached to this shift")
	tasksListCmd.Flags().IntVar(&flagTaskLimit, "limit", 0, "Maximum number of tasks")

	tasksCmd.AddCommand(tasksListCmd, tasksToggleCmd)
	rootCmd.AddCommand(tasksCmd)
}
