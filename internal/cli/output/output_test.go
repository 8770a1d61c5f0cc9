package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hospoda/shiftboard/internal/cli/api"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = prev })
	return &buf
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatSize(tt.input); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"just now", time.Now(), "just now"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5m ago"},
		{"hours", time.Now().Add(-3 * time.Hour), "3h ago"},
		{"days", time.Now().Add(-7 * 24 * time.Hour), "7d ago"},
		{"old", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelativeTime(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestShiftTable(t *testing.T) {
	buf := captureStdout(t)
	name := "Pavel Novák"
	ShiftTable([]api.Shift{
		{ID: "s1", Date: "2025-03-20", StartTime: "10:00", EndTime: "18:00", Position: "Bar", Status: "assigned", AssignedToName: &name},
		{ID: "s2", Date: "2025-03-01", StartTime: "18:00", EndTime: "02:00", Position: "Kuchyně", Status: "open", IsPast: true},
	})

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", out)
	}
	if !strings.Contains(lines[1], "Pavel Novák") || !strings.Contains(lines[1], "10:00-18:00") {
		t.Errorf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "open (past)") {
		t.Errorf("expected past marker, got %q", lines[2])
	}
}

func TestShiftTableEmpty(t *testing.T) {
	buf := captureStdout(t)
	ShiftTable(nil)
	if buf.String() != "No shifts found.\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestTaskTableCheckboxes(t *testing.T) {
	buf := captureStdout(t)
	TaskTable([]api.Task{
		{ID: "t1", Title: "Vynést sklo", Priority: "low", Status: "completed"},
		{ID: "t2", Title: "Doplnit bar", Priority: "high", Status: "pending"},
	})

	out := buf.String()
	if !strings.Contains(out, "[x]  Vynést sklo") {
		t.Errorf("expected completed checkbox, got %q", out)
	}
	if !strings.Contains(out, "[ ]  Doplnit bar") {
		t.Errorf("expected pending checkbox, got %q", out)
	}
}

func TestBulkSummaryListsFailures(t *testing.T) {
	buf := captureStdout(t)
	BulkSummary(api.BulkResult{
		Created:      []api.Shift{{ID: "a"}, {ID: "b"}},
		TasksCreated: 6,
		Failed:       []api.BulkFailure{{Date: "2025-02-30", Error: "invalid date"}},
	})

	out := buf.String()
	if !strings.HasPrefix(out, "Created 2 shift(s) and 6 task(s).") {
		t.Errorf("unexpected summary %q", out)
	}
	if !strings.Contains(out, "2025-02-30") || !strings.Contains(out, "invalid date") {
		t.Errorf("expected failure row, got %q", out)
	}
}

func TestAnnouncementsMarksPriority(t *testing.T) {
	buf := captureStdout(t)
	Announcements([]api.Announcement{
		{Title: "Inventura", Content: "V pondělí", Priority: "urgent", CreatedByName: "Admin", CreatedAt: time.Now()},
		{Title: "Nový sud", Content: "Plzeň", Priority: "normal", CreatedByName: "Admin", CreatedAt: time.Now()},
	})

	out := buf.String()
	if !strings.Contains(out, "Inventura [URGENT]") {
		t.Errorf("expected urgent marker, got %q", out)
	}
	if strings.Contains(out, "Nový sud [") {
		t.Errorf("normal priority should not be marked, got %q", out)
	}
}

func TestJSON(t *testing.T) {
	buf := captureStdout(t)
	JSON(map[string]int{"likes": 2})
	if strings.TrimSpace(buf.String()) != "{\n  \"likes\": 2\n}" {
		t.Errorf("unexpected JSON %q", buf.String())
	}
}

func TestVersionInfoShowsPubSettings(t *testing.T) {
	buf := captureStdout(t)
	VersionInfo("1.4.0", "https://smeny.hospoda.cz", &api.VersionInfo{
		Service:    "hospoda-shiftboard",
		Version:    "1.4.2",
		Commit:     "abc123",
		APIVersion: "v1",
		Timezone:   "Europe/Prague",
		Storage:    "minio",
	}, nil)

	out := buf.String()
	for _, want := range []string{"1.4.0", "hospoda-shiftboard 1.4.2 (abc123)", "Europe/Prague", "minio"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestVersionInfoUnreachableServer(t *testing.T) {
	buf := captureStdout(t)
	VersionInfo("dev", "http://localhost:8080", nil, errors.New("connection refused"))

	out := buf.String()
	if !strings.Contains(out, "unreachable (connection refused)") {
		t.Errorf("expected unreachable status, got:\n%s", out)
	}
	if strings.Contains(out, "Timezone") {
		t.Errorf("did not expect server settings without a server, got:\n%s", out)
	}
}
