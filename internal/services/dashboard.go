package services

import (
	"context"

	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
)

const (
	dashboardShifts        = 5
	dashboardTasks         = 5
	dashboardAnnouncements = 3
)

type DashboardStats struct {
	OpenShifts   int64 `json:"openShifts"`
	MyShifts     int64 `json:"myShifts"`
	PendingTasks int64 `json:"pendingTasks"`
}

type Dashboard struct {
	Greeting       string                `json:"greeting"`
	DisplayName    string                `json:"displayName"`
	Role           models.UserRole       `json:"role"`
	UpcomingShifts []ShiftListItem       `json:"upcomingShifts"`
	Tasks          []models.Task         `json:"tasks"`
	Announcements  []models.Announcement `json:"announcements"`
	Stats          DashboardStats        `json:"stats"`
}

type DashboardService struct {
	Shifts        *ShiftService
	Tasks         *TaskService
	Announcements *AnnouncementService
}

func NewDashboardService(shifts *ShiftService, tasks *TaskService, announcements *AnnouncementService) *DashboardService {
	return &DashboardService{Shifts: shifts, Tasks: tasks, Announcements: announcements}
}

// Greeting picks the salutation for the local hour.
func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Dobré ráno"
	case hour < 18:
		return "Dobré odpoledne"
	default:
		return "Dobrý večer"
	}
}

func (d *DashboardService) Summary(ctx context.Context, sess session.Session) (*Dashboard, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}

	clock := d.Shifts.Clock
	today := clock.Today()
	db := d.Shifts.DB.WithContext(ctx)

	upcoming := db.Model(&models.Shift{}).Where("date >= ?", today)
	if !sess.IsAdmin() {
		upcoming = upcoming.Where("assigned_to = ? OR status = ?", sess.UserID, models.ShiftStatusOpen)
	}
	var shifts []models.Shift
	if err := upcoming.Order("date ASC").Order("start_time ASC").Limit(dashboardShifts).Find(&shifts).Error; err != nil {
		return nil, err
	}

	pending, err := d.Tasks.List(ctx, sess, TaskFilter{Status: models.TaskStatusPending})
	if err != nil {
		return nil, err
	}
	tasks := pending
	if len(tasks) > dashboardTasks {
		tasks = tasks[:dashboardTasks]
	}

	announcements, err := d.Announcements.ListActive(ctx, sess, false, dashboardAnnouncements)
	if err != nil {
		return nil, err
	}

	var stats DashboardStats
	if err := db.Model(&models.Shift{}).
		Where("date >= ? AND status = ?", today, models.ShiftStatusOpen).
		Count(&stats.OpenShifts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Shift{}).
		Where("date >= ? AND assigned_to = ?", today, sess.UserID).
		Count(&stats.MyShifts).Error; err != nil {
		return nil, err
	}
	stats.PendingTasks = int64(len(pending))

	return &Dashboard{
		Greeting:       Greeting(clock.now().Hour()),
		DisplayName:    sess.DisplayName,
		Role:           sess.Role,
		UpcomingShifts: d.Shifts.decorate(shifts),
		Tasks:          tasks,
		Announcements:  announcements,
		Stats:          stats,
	}, nil
}
