package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"staff"},
	Short:   "Manage employee profiles (admin)",
}

var flagEmployeeSearch string

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees by name",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		params := url.Values{}
		if flagEmployeeSearch != "" {
			params.Set("search", flagEmployeeSearch)
		}
		var resp api.Response[[]api.Profile]
		if err := apiClient.Get("/employees", params, &resp); err != nil {
			return explain(err, "listing employees")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.EmployeeTable(resp.Data)
		return nil
	},
}

var employeesBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Create missing profiles for accounts that never signed in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		var resp api.Response[struct {
			Created []api.Profile `json:"created"`
			Skipped int           `json:"skipped"`
		}]
		if err := apiClient.Post("/employees/backfill", nil, &resp); err != nil {
			return explain(err, "backfilling profiles")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Printf("Created %d profile(s), skipped %d.\n", len(resp.Data.Created), resp.Data.Skipped)
		if len(resp.Data.Created) > 0 {
			output.EmployeeTable(resp.Data.Created)
		}
		return nil
	},
}

var (
	flagAuditType string
	flagAuditPage int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit trail (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		params := url.Values{"page": {strconv.Itoa(flagAuditPage)}}
		if flagAuditType != "" {
			params.Set("resourceType", flagAuditType)
		}
		var resp api.Response[[]api.AuditRecord]
		if err := apiClient.Get("/audit", params, &resp); err != nil {
			return explain(err, "reading audit log")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.AuditTable(resp.Data)
		if p := resp.Pagination; p != nil && p.TotalPages > 1 {
			fmt.Printf("\nPage %d of %d (%d entries)\n", p.Page, p.TotalPages, p.Total)
		}
		return nil
	},
}

func init() {
	employeesListCmd.Flags().StringVar(&flagEmployeeSearch, "search", "", "Filter by name or email")
	employeesCmd.AddCommand(employeesListCmd, employeesBackfillCmd)

	auditCmd.Flags().StringVar(&flagAuditType, "type", "", "Filter by resource type, e.g. shift or task")
	auditCmd.Flags().IntVar(&flagAuditPage, "page", 1, "Page number")

	rootCmd.AddCommand(employeesCmd, auditCmd)
}
