package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hospoda/shiftboard/internal/cli/api"
)

// Stdout is where every printer writes. Tests swap it for a buffer.
var Stdout io.Writer = os.Stdout

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
}

// JSON prints v as indented JSON.
func JSON(v interface{}) {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// ShiftTable prints shifts in list order. Past shifts are marked.
func ShiftTable(shifts []api.Shift) {
	if len(shifts) == 0 {
		fmt.Fprintln(Stdout, "No shifts found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "DATE\tTIME\tPOSITION\tSTATUS\tASSIGNED\tID")
	for _, s := range shifts {
		status := s.Status
		if s.IsPast {
			status += " (past)"
		}
		fmt.Fprintf(w, "%s\t%s-%s\t%s\t%s\t%s\t%s\n",
			s.Date, s.StartTime, s.EndTime, s.Position, status, deref(s.AssignedToName), s.ID)
	}
	w.Flush()
}

func ShiftDetail(s api.Shift) {
	w := newTable()
	fmt.Fprintf(w, "ID:\t%s\n", s.ID)
	fmt.Fprintf(w, "Date:\t%s\n", s.Date)
	fmt.Fprintf(w, "Time:\t%s-%s\n", s.StartTime, s.EndTime)
	fmt.Fprintf(w, "Position:\t%s\n", s.Position)
	fmt.Fprintf(w, "Status:\t%s\n", s.Status)
	if s.AssignedToName != nil {
		fmt.Fprintf(w, "Assigned:\t%s\n", *s.AssignedToName)
	}
	if s.Notes != "" {
		fmt.Fprintf(w, "Notes:\t%s\n", s.Notes)
	}
	w.Flush()
}

func TaskTable(tasks []api.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(Stdout, "No tasks found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "\tTITLE\tPRIORITY\tDUE\tID")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", Checkbox(t.Status), t.Title, t.Priority, deref(t.DueDate), t.ID)
	}
	w.Flush()
}

// Checkbox renders a task status the way the printed board does.
func Checkbox(status string) string {
	if status == "completed" {
		return "[x]"
	}
	return "[ ]"
}

func EmployeeTable(profiles []api.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(Stdout, "No employees found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tPOSITION\tACTIVE\tUID")
	for _, p := range profiles {
		active := "yes"
		if !p.IsActive {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.DisplayName, p.Email, p.Role, deref(p.Position), active, p.UID)
	}
	w.Flush()
}

func ProfileInfo(p api.Profile) {
	w := newTable()
	fmt.Fprintf(w, "Name:\t%s\n", p.DisplayName)
	fmt.Fprintf(w, "Email:\t%s\n", p.Email)
	fmt.Fprintf(w, "Role:\t%s\n", p.Role)
	if p.Position != nil {
		fmt.Fprintf(w, "Position:\t%s\n", *p.Position)
	}
	fmt.Fprintf(w, "UID:\t%s\n", p.UID)
	w.Flush()
}

func Announcements(items []api.Announcement) {
	if len(items) == 0 {
		fmt.Fprintln(Stdout, "No announcements.")
		return
	}
	for i, a := range items {
		if i > 0 {
			fmt.Fprintln(Stdout)
		}
		marker := ""
		if a.Priority != "normal" {
			marker = " [" + strings.ToUpper(a.Priority) + "]"
		}
		fmt.Fprintf(Stdout, "%s%s\n", a.Title, marker)
		fmt.Fprintf(Stdout, "  %s\n", a.Content)
		fmt.Fprintf(Stdout, "  %s, %s\n", a.CreatedByName, RelativeTime(a.CreatedAt))
	}
}

func PhotoTable(photos []api.Photo) {
	if len(photos) == 0 {
		fmt.Fprintln(Stdout, "No photos yet.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "CAPTION\tBY\tSIZE\tLIKES\tUPLOADED\tID")
	for _, p := range photos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			p.Caption, p.UploadedByName, FormatSize(p.Size), len(p.Likes), RelativeTime(p.CreatedAt), p.ID)
	}
	w.Flush()
}

func BulkSummary(r api.BulkResult) {
	fmt.Fprintf(Stdout, "Created %d shift(s) and %d task(s).\n", len(r.Created), r.TasksCreated)
	if len(r.Failed) == 0 {
		return
	}
	w := newTable()
	fmt.Fprintln(w, "FAILED DATE\tERROR")
	for _, f := range r.Failed {
		fmt.Fprintf(w, "%s\t%s\n", f.Date, f.Error)
	}
	w.Flush()
}

func Templates(c api.TemplateCatalog) {
	w := newTable()
	fmt.Fprintln(w, "TEMPLATE\tTIME\tPOSITION")
	for _, s := range c.Shifts {
		fmt.Fprintf(w, "%s\t%s-%s\t%s\n", s.Name, s.StartTime, s.EndTime, s.Position)
	}
	w.Flush()

	if len(c.TaskSets) > 0 {
		fmt.Fprintln(Stdout)
		w = newTable()
		fmt.Fprintln(w, "TASK SET\tTASKS")
		for _, ts := range c.TaskSets {
			fmt.Fprintf(w, "%s\t%d\n", ts.Name, len(ts.Tasks))
		}
		w.Flush()
	}

	if len(c.Recurrences) > 0 {
		fmt.Fprintln(Stdout)
		w = newTable()
		fmt.Fprintln(w, "RECURRENCE\tRULE")
		for _, r := range c.Recurrences {
			fmt.Fprintf(w, "%s\t%s\n", r.Name, r.RRule)
		}
		w.Flush()
	}
}

func Dashboard(d api.Dashboard) {
	fmt.Fprintf(Stdout, "%s, %s!\n\n", d.Greeting, d.DisplayName)
	w := newTable()
	fmt.Fprintf(w, "Open shifts:\t%d\n", d.Stats.OpenShifts)
	fmt.Fprintf(w, "My shifts:\t%d\n", d.Stats.MyShifts)
	fmt.Fprintf(w, "Pending tasks:\t%d\n", d.Stats.PendingTasks)
	w.Flush()

	if len(d.UpcomingShifts) > 0 {
		fmt.Fprintln(Stdout, "\nUpcoming:")
		ShiftTable(d.UpcomingShifts)
	}
	if len(d.Announcements) > 0 {
		fmt.Fprintln(Stdout, "\nAnnouncements:")
		Announcements(d.Announcements)
	}
}

func AuditTable(records []api.AuditRecord) {
	if len(records) == 0 {
		fmt.Fprintln(Stdout, "No audit entries.")
		return
	}
	w := newTable()
	fmt.Fprintln(w, "WHEN\tACTION\tSUMMARY")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Action, r.Summary)
	}
	w.Flush()
}

// VersionInfo prints the CLI build next to the server it talks to, including
// the pub's timezone that shift dates are interpreted in.
func VersionInfo(cliVersion, serverURL string, server *api.VersionInfo, serverErr error) {
	w := newTable()
	fmt.Fprintf(w, "shiftctl:\t%s\n", cliVersion)
	fmt.Fprintf(w, "Server:\t%s\n", serverURL)
	if server == nil {
		if serverErr != nil {
			fmt.Fprintf(w, "Status:\tunreachable (%v)\n", serverErr)
		}
		w.Flush()
		return
	}
	fmt.Fprintf(w, "Service:\t%s %s (%s)\n", server.Service, server.Version, server.Commit)
	fmt.Fprintf(w, "API:\t%s\n", server.APIVersion)
	fmt.Fprintf(w, "Timezone:\t%s\n", server.Timezone)
	fmt.Fprintf(w, "Storage:\t%s\n", server.Storage)
	w.Flush()
}

// SessionInfo prints where the cached session points and how old it is.
func SessionInfo(serverURL string, signedInAt time.Time) {
	w := newTable()
	fmt.Fprintf(w, "Server:\t%s\n", serverURL)
	if !signedInAt.IsZero() {
		fmt.Fprintf(w, "Signed in:\t%s\n", RelativeTime(signedInAt))
	}
	w.Flush()
}

// FormatSize converts bytes to a human-readable string.
func FormatSize(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
