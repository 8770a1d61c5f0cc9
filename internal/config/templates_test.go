package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplatesDefault(t *testing.T) {
	catalog, err := LoadTemplates("")
	require.NoError(t, err)

	morning, ok := catalog.Shift("rano")
	require.True(t, ok)
	assert.Equal(t, "09:00", morning.StartTime)
	assert.Equal(t, "17:00", morning.EndTime)
	assert.Equal(t, "Server", morning.Position)

	set, ok := catalog.TaskSet("otevirani")
	require.True(t, ok)
	assert.Len(t, set.Tasks, 3)

	_, ok = catalog.Recurrence("vikendy")
	assert.True(t, ok)

	_, ok = catalog.Shift("missing")
	assert.False(t, ok)
}

func TestLoadTemplatesFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	content := `shiftTemplates:
  - name: brunch
    startTime: "10:00"
    endTime: "14:00"
    position: Server
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	catalog, err := LoadTemplates(path)
	require.NoError(t, err)
	require.Len(t, catalog.Shifts, 1)
	assert.Equal(t, "brunch", catalog.Shifts[0].Name)
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	_, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseTemplatesValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "bad time format",
			content: `shiftTemplates:
  - name: x
    startTime: "9am"
    endTime: "17:00"
    position: Server
`,
		},
		{
			name: "start equals end",
			content: `shiftTemplates:
  - name: x
    startTime: "09:00"
    endTime: "09:00"
    position: Server
`,
		},
		{
			name: "missing position",
			content: `shiftTemplates:
  - name: x
    startTime: "09:00"
    endTime: "17:00"
`,
		},
		{
			name: "duplicate names",
			content: `shiftTemplates:
  - name: x
    startTime: "09:00"
    endTime: "17:00"
    position: Server
  - name: x
    startTime: "10:00"
    endTime: "18:00"
    position: Server
`,
		},
		{
			name: "bad task priority",
			content: `taskSets:
  - name: s
    tasks:
      - title: T1
        priority: urgent
`,
		},
		{
			name: "invalid rrule",
			content: `recurrences:
  - name: r
    rrule: "FREQ=SOMETIMES"
`,
		},
		{
			name:    "not yaml",
			content: "shiftTemplates: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplates([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}
