package services

import (
	"context"
	"testing"

	"github.com/hospoda/shiftboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Dobré ráno", Greeting(0))
	assert.Equal(t, "Dobré ráno", Greeting(11))
	assert.Equal(t, "Dobré odpoledne", Greeting(12))
	assert.Equal(t, "Dobré odpoledne", Greeting(17))
	assert.Equal(t, "Dobrý večer", Greeting(18))
	assert.Equal(t, "Dobrý večer", Greeting(23))
}

func TestDashboardSummary(t *testing.T) {
	db := setupServiceDB(t)
	clock := fixedClock(t)
	shifts := NewShiftService(db, clock)
	tasks := NewTaskService(db, clock)
	board := NewAnnouncementService(db, clock)
	dash := NewDashboardService(shifts, tasks, board)
	ctx := context.Background()

	admin := createProfile(t, db, "Boss", models.UserRoleAdmin)
	me := createProfile(t, db, "Me", models.UserRoleEmployee)
	other := createProfile(t, db, "Other", models.UserRoleEmployee)

	createShift(t, db, "2025-03-11", assignedTo(me))
	mine := createShift(t, db, "2025-03-13", assignedTo(me))
	createShift(t, db, "2025-03-14", assignedTo(other))
	createShift(t, db, "2025-03-15")

	for i := 0; i < 7; i++ {
		_, err := tasks.Create(ctx, admin, TaskInput{Title: "úkol", ShiftID: &mine.ID})
		require.NoError(t, err)
	}
	_, err := board.Create(ctx, admin, AnnouncementInput{Title: "Porada", Content: "v pátek"})
	require.NoError(t, err)

	summary, err := dash.Summary(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, "Dobré ráno", summary.Greeting)
	assert.Equal(t, "Me", summary.DisplayName)
	require.Len(t, summary.UpcomingShifts, 2, "own and open upcoming shifts")
	assert.Equal(t, "2025-03-13", summary.UpcomingShifts[0].Date)
	assert.Len(t, summary.Tasks, 5)
	assert.Equal(t, int64(7), summary.Stats.PendingTasks)
	assert.Equal(t, int64(1), summary.Stats.OpenShifts)
	assert.Equal(t, int64(1), summary.Stats.MyShifts)
	assert.Len(t, summary.Announcements, 1)

	adminView, err := dash.Summary(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, adminView.UpcomingShifts, 3)
	assert.Equal(t, models.UserRoleAdmin, adminView.Role)
}
