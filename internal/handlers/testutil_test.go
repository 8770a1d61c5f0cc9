package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/config"
	"github.com/hospoda/shiftboard/internal/database"
	"github.com/hospoda/shiftboard/internal/middleware"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/internal/storage"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testBootstrapEmail    = "admin@hospoda.local"
	testBootstrapPassword = "tajne-heslo"
	testToday             = "2025-03-12"
)

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	store *storage.MemoryStore
	audit *services.AuditService
	auth  *AuthHandler
}

var testSetupOnce sync.Once

// testClock pins "now" to 10:00 Prague time on 2025-03-12, a Wednesday. Each
// call moves forward a millisecond so upload object names stay unique.
func testClock(t *testing.T) services.Clock {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Prague")
	if err != nil {
		t.Fatalf("failed loading timezone: %v", err)
	}
	start := time.Date(2025, 3, 12, 10, 0, 0, 0, loc)
	var mu sync.Mutex
	calls := 0
	return services.Clock{Location: loc, Now: func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return start.Add(time.Duration(calls) * time.Millisecond)
	}}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.InitWithLevel(logger.LevelError)
		utils.ConfigureJWT("test-secret", 24)
	})

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating models: %v", err)
	}

	templates, err := config.LoadTemplates("")
	if err != nil {
		t.Fatalf("failed loading templates: %v", err)
	}

	clock := testClock(t)
	store := storage.NewMemoryStore()

	auditService := services.NewAuditService(db, 64)
	profileService := services.NewProfileService(db, testBootstrapEmail)
	authService := services.NewAuthService(db, profileService, testBootstrapPassword)
	shiftService := services.NewShiftService(db, clock)
	taskService := services.NewTaskService(db, clock)
	announcementService := services.NewAnnouncementService(db, clock)
	galleryService := services.NewGalleryService(db, store, clock, services.GalleryOptions{
		MaxUploadBytes: 2 * 1024 * 1024,
		MaxWidth:       1200,
		JPEGQuality:    80,
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = auditService.Close(ctx)
		_ = sqlDB.Close()
	})

	h := Handlers{
		Version:       NewVersionHandler("Europe/Prague", "memory"),
		Auth:          NewAuthHandler(authService, profileService, nil, auditService, "http://localhost:3000"),
		Employees:     NewEmployeesHandler(profileService, auditService),
		Shifts:        NewShiftsHandler(shiftService, services.NewBulkShiftService(db, clock, templates), taskService, services.NewCalendarService(shiftService), auditService),
		Tasks:         NewTasksHandler(taskService, auditService),
		Announcements: NewAnnouncementsHandler(announcementService, auditService),
		Gallery:       NewGalleryHandler(galleryService, auditService),
		Dashboard:     NewDashboardHandler(services.NewDashboardService(shiftService, taskService, announcementService)),
		Audit:         NewAuditHandler(auditService),
	}

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	RegisterRoutes(app.Group("/api"), h, middleware.NewAuthMiddleware(authService, profileService))

	return &testEnv{app: app, db: db, store: store, audit: auditService, auth: h.Auth}
}

// createTestUser inserts an identity with a ready profile and returns a token
// for it.
func createTestUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) (*models.UserProfile, string) {
	t.Helper()

	hash, err := utils.HashPassword("heslo123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	identity := &models.Identity{
		Email:        name + "@hospoda.test",
		PasswordHash: hash,
		DisplayName:  name,
	}
	if err := db.Create(identity).Error; err != nil {
		t.Fatalf("failed creating test identity: %v", err)
	}

	profile := &models.UserProfile{
		UID:         identity.ID,
		Email:       identity.Email,
		DisplayName: name,
		Role:        role,
		IsActive:    true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed creating test profile: %v", err)
	}

	token, err := utils.GenerateToken(identity, role)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return profile, token
}

func createTestShift(t *testing.T, db *gorm.DB, date string, assignee *models.UserProfile) *models.Shift {
	t.Helper()

	shift := &models.Shift{
		Date:      date,
		StartTime: "09:00",
		EndTime:   "17:00",
		Position:  "Obsluha",
		Status:    models.ShiftStatusOpen,
		CreatedBy: uuid.New(),
		Version:   1,
	}
	if assignee != nil {
		uid := assignee.UID
		name := assignee.DisplayName
		shift.Status = models.ShiftStatusAssigned
		shift.AssignedTo = &uid
		shift.AssignedToName = &name
	}
	if err := db.Create(shift).Error; err != nil {
		t.Fatalf("failed creating test shift: %v", err)
	}
	return shift
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func dataMap(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", body["data"])
	}
	return data
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %#v", body["data"])
	}
	return data
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected status %d, got %d body=%s", expected, resp.StatusCode, string(raw))
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if success, _ := body["success"].(bool); success {
		t.Fatalf("expected success=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
