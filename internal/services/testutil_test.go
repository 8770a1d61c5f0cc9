package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/database"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testBootstrapEmail = "admin@hospoda.local"

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed opening in-memory sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db), "failed migrating")
	return db
}

// fixedClock pins "now" to 10:00 Prague time on 2025-03-12, a Wednesday.
func fixedClock(t *testing.T) Clock {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Prague")
	require.NoError(t, err)
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, loc)
	return Clock{Now: func() time.Time { return now }, Location: loc}
}

func createProfile(t *testing.T, db *gorm.DB, name string, role models.UserRole) session.Session {
	t.Helper()
	profile := models.UserProfile{
		UID:         uuid.New(),
		Email:       name + "@hospoda.test",
		DisplayName: name,
		Role:        role,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&profile).Error)
	return session.FromProfile(&profile)
}

func createShift(t *testing.T, db *gorm.DB, date string, mutate ...func(*models.Shift)) *models.Shift {
	t.Helper()
	shift := &models.Shift{
		Date:      date,
		StartTime: "09:00",
		EndTime:   "17:00",
		Position:  "Server",
		Status:    models.ShiftStatusOpen,
		CreatedBy: uuid.New(),
		Version:   1,
	}
	for _, m := range mutate {
		m(shift)
	}
	require.NoError(t, db.Create(shift).Error)
	return shift
}

func assignedTo(s session.Session) func(*models.Shift) {
	return func(shift *models.Shift) {
		uid := s.UserID
		name := s.DisplayName
		shift.Status = models.ShiftStatusAssigned
		shift.AssignedTo = &uid
		shift.AssignedToName = &name
	}
}

func sessionFor(p *models.UserProfile) session.Session {
	return session.FromProfile(p)
}
