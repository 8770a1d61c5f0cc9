package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// ShiftTemplate is a reusable time slot for bulk shift creation.
type ShiftTemplate struct {
	Name      string `yaml:"name" json:"name" validate:"required"`
	StartTime string `yaml:"startTime" json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `yaml:"endTime" json:"endTime" validate:"required,datetime=15:04,nefield=StartTime"`
	Position  string `yaml:"position" json:"position" validate:"required"`
}

type TaskTemplate struct {
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Priority    string `yaml:"priority,omitempty" json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// TaskSet is a named list of tasks copied onto every shift of a bulk run.
type TaskSet struct {
	Name  string         `yaml:"name" json:"name" validate:"required"`
	Tasks []TaskTemplate `yaml:"tasks" json:"tasks" validate:"required,min=1,dive"`
}

// Recurrence is a named RFC 5545 rule such as "every Friday and Saturday".
type Recurrence struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	RRule string `yaml:"rrule" json:"rrule" validate:"required"`
}

type TemplateCatalog struct {
	Shifts      []ShiftTemplate `yaml:"shiftTemplates" json:"shiftTemplates" validate:"dive"`
	TaskSets    []TaskSet       `yaml:"taskSets,omitempty" json:"taskSets" validate:"dive"`
	Recurrences []Recurrence    `yaml:"recurrences,omitempty" json:"recurrences" validate:"dive"`
}

var validate = validator.New()

// LoadTemplates reads the catalog at path, or the embedded default when path is empty.
func LoadTemplates(path string) (*TemplateCatalog, error) {
	data := defaultTemplates
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read templates file: %w", err)
		}
		data = raw
	}
	return ParseTemplates(data)
}

func ParseTemplates(data []byte) (*TemplateCatalog, error) {
	var catalog TemplateCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *TemplateCatalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("template validation failed: %w", err)
	}

	seen := make(map[string]bool)
	for _, t := range c.Shifts {
		if seen[t.Name] {
			return fmt.Errorf("duplicate shift template %q", t.Name)
		}
		seen[t.Name] = true
	}

	for i, r := range c.Recurrences {
		if _, err := rrule.StrToRRule(r.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurrences[%d]: %w", i, err)
		}
	}

	return nil
}

func (c *TemplateCatalog) Shift(name string) (ShiftTemplate, bool) {
	for _, t := range c.Shifts {
		if t.Name == name {
			return t, true
		}
	}
	return ShiftTemplate{}, false
}

func (c *TemplateCatalog) TaskSet(name string) (TaskSet, bool) {
	for _, s := range c.TaskSets {
		if s.Name == name {
			return s, true
		}
	}
	return TaskSet{}, false
}

func (c *TemplateCatalog) Recurrence(name string) (Recurrence, bool) {
	for _, r := range c.Recurrences {
		if r.Name == name {
			return r, true
		}
	}
	return Recurrence{}, false
}
