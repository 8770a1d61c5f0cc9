package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hospoda/shiftboard/internal/cli/api"
	"github.com/hospoda/shiftboard/internal/cli/output"
	"github.com/spf13/cobra"
)

var shiftsCmd = &cobra.Command{
	Use:     "shifts",
	Aliases: []string{"smeny"},
	Short:   "Browse, claim and schedule shifts",
}

var (
	flagShiftView string
	flagShiftFrom string
	flagShiftTo   string
)

var shiftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shifts (all, open or mine)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{}
		if flagShiftView != "" {
			params.Set("view", flagShiftView)
		}
		if flagShiftFrom != "" {
			params.Set("from", flagShiftFrom)
		}
		if flagShiftTo != "" {
			params.Set("to", flagShiftTo)
		}

		var resp api.Response[[]api.Shift]
		if err := apiClient.Get("/shifts", params, &resp); err != nil {
			return explain(err, "listing shifts")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.ShiftTable(resp.Data)
		return nil
	},
}

var shiftsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a shift with its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[struct {
			Shift  api.Shift  `json:"shift"`
			IsPast bool       `json:"isPast"`
			Tasks  []api.Task `json:"tasks"`
		}]
		if err := apiClient.Get("/shifts/"+url.PathEscape(args[0]), nil, &resp); err != nil {
			return explain(err, "fetching shift")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		shift := resp.Data.Shift
		shift.IsPast = resp.Data.IsPast
		output.ShiftDetail(shift)
		fmt.Println()
		output.TaskTable(resp.Data.Tasks)
		return nil
	},
}

// transitionCommand builds claim/release style commands that POST to
// /shifts/:id/<verb> and print the resulting shift.
func transitionCommand(verb, short, done string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(); err != nil {
				return err
			}
			var resp api.Response[api.Shift]
			if err := apiClient.Post("/shifts/"+url.PathEscape(args[0])+"/"+verb, nil, &resp); err != nil {
				return explain(err, verb)
			}
			if flagJSON {
				output.JSON(resp.Data)
				return nil
			}
			fmt.Printf("%s %s %s-%s (%s)\n", done, resp.Data.Date, resp.Data.StartTime, resp.Data.EndTime, resp.Data.Position)
			return nil
		},
	}
}

var flagAssignUser string

var shiftsAssignCmd = &cobra.Command{
	Use:   "assign <id>",
	Short: "Assign a shift to an employee (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		if flagAssignUser == "" {
			return errors.New("--user is required")
		}
		var resp api.Response[api.Shift]
		body := map[string]string{"userId": flagAssignUser}
		if err := apiClient.Post("/shifts/"+url.PathEscape(args[0])+"/assign", body, &resp); err != nil {
			return explain(err, "assign")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.ShiftDetail(resp.Data)
		return nil
	},
}

var (
	flagCreateDate     string
	flagCreateStart    string
	flagCreateEnd      string
	flagCreatePosition string
	flagCreateNotes    string
)

var shiftsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a single open shift (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		body := map[string]string{
			"date":      flagCreateDate,
			"startTime": flagCreateStart,
			"endTime":   flagCreateEnd,
			"position":  flagCreatePosition,
			"notes":     flagCreateNotes,
		}
		var resp api.Response[api.Shift]
		if err := apiClient.Post("/shifts", body, &resp); err != nil {
			return explain(err, "creating shift")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.ShiftDetail(resp.Data)
		return nil
	},
}

var (
	flagBulkDates      []string
	flagBulkRecurrence string
	flagBulkRRule      string
	flagBulkFrom       string
	flagBulkTo         string
	flagBulkTemplate   string
	flagBulkStart      string
	flagBulkEnd        string
	flagBulkPosition   string
	flagBulkTaskSet    string
	flagBulkNotes      string
)

var shiftsBulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Create shifts for many dates at once (admin)",
	Long: `Create one open shift per date. Dates come from --dates, or from a
named --recurrence or raw --rrule expanded between --from and --to.

  shiftctl shifts bulk --dates 2025-03-20,2025-03-21 --template vecer
  shiftctl shifts bulk --recurrence vikendy --from 2025-04-01 --to 2025-04-30 --template obed --task-set otevirani`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}

		req := api.BulkRequest{
			Dates:      flagBulkDates,
			Recurrence: flagBulkRecurrence,
			RRule:      flagBulkRRule,
			From:       flagBulkFrom,
			To:         flagBulkTo,
			Template:   flagBulkTemplate,
			StartTime:  flagBulkStart,
			EndTime:    flagBulkEnd,
			Position:   flagBulkPosition,
			Notes:      flagBulkNotes,
			TaskSet:    flagBulkTaskSet,
		}
		if len(req.Dates) == 0 && req.Recurrence == "" && req.RRule == "" {
			return errors.New("one of --dates, --recurrence or --rrule is required")
		}

		var resp api.Response[api.BulkResult]
		if err := apiClient.Post("/shifts/bulk", req, &resp); err != nil {
			return explain(err, "bulk create")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.BulkSummary(resp.Data)
		return nil
	},
}

var shiftsTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List shift templates, task sets and recurrences",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		var resp api.Response[api.TemplateCatalog]
		if err := apiClient.Get("/shifts/templates", nil, &resp); err != nil {
			return explain(err, "fetching templates")
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.Templates(resp.Data)
		return nil
	},
}

var flagPrintOut string

var shiftsPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Render the printable schedule as HTML",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}
		params := url.Values{}
		if flagShiftFrom != "" {
			params.Set("from", flagShiftFrom)
		}
		if flagShiftTo != "" {
			params.Set("to", flagShiftTo)
		}

		page, err := apiClient.GetRaw("/shifts/print", params)
		if err != nil {
			return explain(err, "rendering schedule")
		}
		if flagPrintOut == "" || flagPrintOut == "-" {
			_, err = os.Stdout.Write(page)
			return err
		}
		if err := os.WriteFile(flagPrintOut, page, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", flagPrintOut, err)
		}
		fmt.Printf("Schedule written to %s\n", flagPrintOut)
		return nil
	},
}

func init() {
	shiftsListCmd.Flags().StringVar(&flagShiftView, "view", "all", "Which shifts to show: all, open or mine")
	for _, c := range []*cobra.Command{shiftsListCmd, shiftsPrintCmd} {
		c.Flags().StringVar(&flagShiftFrom, "from", "", "First date (YYYY-MM-DD)")
		c.Flags().StringVar(&flagShiftTo, "to", "", "Last date (YYYY-MM-DD)")
	}
	shiftsPrintCmd.Flags().StringVarP(&flagPrintOut, "output", "o", "", "Write HTML to a file instead of stdout")

	shiftsAssignCmd.Flags().StringVar(&flagAssignUser, "user", "", "UID of the employee")

	shiftsCreateCmd.Flags().StringVar(&flagCreateDate, "date", "", "Shift date (YYYY-MM-DD)")
	shiftsCreateCmd.Flags().StringVar(&flagCreateStart, "start", "", "Start time (HH:MM)")
	shiftsCreateCmd.Flags().StringVar(&flagCreateEnd, "end", "", "End time (HH:MM)")
	shiftsCreateCmd.Flags().StringVar(&flagCreatePosition, "position", "", "Position, e.g. Bar or Kuchyně")
	shiftsCreateCmd.Flags().StringVar(&flagCreateNotes, "notes", "", "Optional notes")
	for _, name := range []string{"date", "start", "end", "position"} {
		_ = shiftsCreateCmd.MarkFlagRequired(name)
	}

	shiftsBulkCmd.Flags().StringSliceVar(&flagBulkDates, "dates", nil, "Comma separated dates (YYYY-MM-DD)")
	shiftsBulkCmd.Flags().StringVar(&flagBulkRecurrence, "recurrence", "", "Named recurrence from the template catalog")
	shiftsBulkCmd.Flags().StringVar(&flagBulkRRule, "rrule", "", "RFC 5545 recurrence rule")
	shiftsBulkCmd.Flags().StringVar(&flagBulkFrom, "from", "", "Recurrence window start (YYYY-MM-DD)")
	shiftsBulkCmd.Flags().StringVar(&flagBulkTo, "to", "", "Recurrence window end (YYYY-MM-DD)")
	shiftsBulkCmd.Flags().StringVar(&flagBulkTemplate, "template", "", "Shift template name")
	shiftsBulkCmd.Flags().StringVar(&flagBulkStart, "start", "", "Start time when no template is used")
	shiftsBulkCmd.Flags().StringVar(&flagBulkEnd, "end", "", "End time when no template is used")
	shiftsBulkCmd.Flags().StringVar(&flagBulkPosition, "position", "", "Position when no template is used")
	shiftsBulkCmd.Flags().StringVar(&flagBulkTaskSet, "task-set", "", "Task set to attach to every created shift")
	shiftsBulkCmd.Flags().StringVar(&flagBulkNotes, "notes", "", "Notes copied to every shift")

	shiftsCmd.AddCommand(
		shiftsListCmd,
		shiftsShowCmd,
		transitionCommand("claim", "Take an open shift", "Claimed"),
		transitionCommand("release", "Give back one of your shifts", "Released"),
		shiftsAssignCmd,
		shiftsCreateCmd,
		shiftsBulkCmd,
		shiftsTemplatesCmd,
		shiftsPrintCmd,
	)
	rootCmd.AddCommand(shiftsCmd)
}

// splitIDs accepts ids separated by commas or whitespace.
func splitIDs(args []string) []string {
	var ids []string
	for _, arg := range args {
		for _, part := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			ids = append(ids, part)
		}
	}
	return ids
}
