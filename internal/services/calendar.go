package services

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
)

const (
	calendarCells = 42
	maxPrintDays  = 62
)

type CalendarCell struct {
	Date           string `json:"date"`
	Day            int    `json:"day"`
	IsCurrentMonth bool   `json:"isCurrentMonth"`
	IsToday        bool   `json:"isToday"`
	HasOpen        bool   `json:"hasOpen"`
	HasMine        bool   `json:"hasMine"`
	HasOther       bool   `json:"hasOther"`
	ShiftCount     int    `json:"shiftCount"`
}

type CalendarMonth struct {
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Cells  []CalendarCell  `json:"cells"`
	Shifts []ShiftListItem `json:"shifts"`
}

type CalendarService struct {
	Shifts *ShiftService
}

func NewCalendarService(shifts *ShiftService) *CalendarService {
	return &CalendarService{Shifts: shifts}
}

// Month builds a six-week, Monday-first grid around the given month.
// Zero year or month means the current one.
func (c *CalendarService) Month(ctx context.Context, sess session.Session, year, month int) (*CalendarMonth, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}

	clock := c.Shifts.Clock
	now := clock.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return nil, invalidf("invalid year or month")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	gridStart := first.AddDate(0, 0, -offset)
	gridEnd := gridStart.AddDate(0, 0, calendarCells-1)

	shifts, err := c.Shifts.between(ctx, gridStart.Format(models.DateLayout), gridEnd.Format(models.DateLayout))
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]models.Shift)
	for _, shift := range shifts {
		byDate[shift.Date] = append(byDate[shift.Date], shift)
	}

	today := clock.Today()
	cells := make([]CalendarCell, calendarCells)
	for i := range cells {
		day := gridStart.AddDate(0, 0, i)
		date := day.Format(models.DateLayout)
		cell := CalendarCell{
			Date:           date,
			Day:            day.Day(),
			IsCurrentMonth: day.Month() == first.Month(),
			IsToday:        date == today,
			ShiftCount:     len(byDate[date]),
		}
		for _, shift := range byDate[date] {
			switch {
			case shift.Status == models.ShiftStatusOpen:
				cell.HasOpen = true
			case shift.IsAssignedTo(sess.UserID):
				cell.HasMine = true
			default:
				cell.HasOther = true
			}
		}
		cells[i] = cell
	}

	var inMonth []models.Shift
	monthPrefix := first.Format("2006-01")
	for _, shift := range shifts {
		if shift.Date[:7] == monthPrefix {
			inMonth = append(inMonth, shift)
		}
	}

	return &CalendarMonth{
		Year:   year,
		Month:  month,
		Cells:  cells,
		Shifts: c.Shifts.decorate(inMonth),
	}, nil
}

var czechWeekdays = [...]string{"Neděle", "Pondělí", "Úterý", "Středa", "Čtvrtek", "Pátek", "Sobota"}

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="cs">
<head>
<meta charset="utf-8">
<title>Rozpis směn {{.From}} – {{.To}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 1.5rem; border-bottom: 1px solid #999; }
table { width: 100%; border-collapse: collapse; }
td, th { text-align: left; padding: 0.25rem 0.5rem; border-bottom: 1px solid #ddd; }
.open { color: #b45309; font-weight: bold; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Rozpis směn {{.From}} – {{.To}}</h1>
{{range .Days}}
<h2>{{.Weekday}} {{.Date}}</h2>
<table>
<tr><th>Čas</th><th>Pozice</th><th>Obsazeno</th><th>Poznámka</th></tr>
{{range .Shifts}}
<tr>
<td>{{.StartTime}}–{{.EndTime}}</td>
<td>{{.Position}}</td>
<td>{{if .AssignedToName}}{{.AssignedToName}}{{else}}<span class="open">Volná</span>{{end}}</td>
<td>{{.Notes}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>V tomto období nejsou žádné směny.</p>
{{end}}
</body>
</html>
`))

type printDay struct {
	Date    string
	Weekday string
	Shifts  []models.Shift
}

// PrintSchedule renders shifts between from and to as a printable HTML page.
// Blank bounds default to the coming week.
func (c *CalendarService) PrintSchedule(ctx context.Context, sess session.Session, from, to string) ([]byte, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}

	clock := c.Shifts.Clock
	if from == "" {
		from = clock.Today()
	}
	if to == "" {
		to = clock.DaysFromToday(6)
	}
	start, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return nil, invalidf("from must be YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, to)
	if err != nil {
		return nil, invalidf("to must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, invalidf("to must not be before from")
	}
	if end.Sub(start) > maxPrintDays*24*time.Hour {
		return nil, invalidf("range is limited to %d days", maxPrintDays)
	}

	shifts, err := c.Shifts.between(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var days []printDay
	for _, shift := range shifts {
		if len(days) == 0 || days[len(days)-1].Date != shift.Date {
			d, _ := time.Parse(models.DateLayout, shift.Date)
			days = append(days, printDay{Date: shift.Date, Weekday: czechWeekdays[d.Weekday()]})
		}
		days[len(days)-1].Shifts = append(days[len(days)-1].Shifts, shift)
	}

	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, map[string]interface{}{
		"From": from,
		"To":   to,
		"Days": days,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
