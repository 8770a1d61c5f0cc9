package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hospoda/shiftboard/internal/config"
	"github.com/hospoda/shiftboard/internal/database"
	"github.com/hospoda/shiftboard/internal/handlers"
	"github.com/hospoda/shiftboard/internal/middleware"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/internal/storage"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
)

func main() {
	cfg := config.Load()
	logger.InitWithLevel(logger.LogLevel(cfg.Log.Level))
	defer logger.Sync()

	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	blobStore, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if err := blobStore.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring storage bucket: %v", err)
	}

	templates, err := config.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		log.Fatalf("failed loading shift templates: %v", err)
	}

	clock := services.NewClock(cfg.Server.Location())

	auditService := services.NewAuditService(db, cfg.Audit.QueueSize)
	profileService := services.NewProfileService(db, cfg.Bootstrap.AdminEmail)
	authService := services.NewAuthService(db, profileService, cfg.Bootstrap.AdminPassword)
	shiftService := services.NewShiftService(db, clock)
	taskService := services.NewTaskService(db, clock)
	announcementService := services.NewAnnouncementService(db, clock)
	galleryService := services.NewGalleryService(db, blobStore, clock, services.GalleryOptions{
		MaxUploadBytes: int64(cfg.Gallery.MaxUploadMB) * 1024 * 1024,
		MaxWidth:       cfg.Gallery.MaxWidth,
		JPEGQuality:    cfg.Gallery.JPEGQuality,
		ListLimit:      cfg.Gallery.ListLimit,
		URLExpiry:      cfg.Gallery.URLExpiry,
	})

	googleService, err := services.NewGoogleOAuthService(context.Background(), cfg.Google)
	switch {
	case errors.Is(err, services.ErrGoogleDisabled):
		logger.Info("google_sign_in_disabled", nil)
	case err != nil:
		log.Fatalf("google sign-in initialization failed: %v", err)
	}

	h := handlers.Handlers{
		Version:       handlers.NewVersionHandler(cfg.Server.Location().String(), cfg.Storage.Backend),
		Auth:          handlers.NewAuthHandler(authService, profileService, googleService, auditService, cfg.Server.FrontendURL),
		Employees:     handlers.NewEmployeesHandler(profileService, auditService),
		Shifts:        handlers.NewShiftsHandler(shiftService, services.NewBulkShiftService(db, clock, templates), taskService, services.NewCalendarService(shiftService), auditService),
		Tasks:         handlers.NewTasksHandler(taskService, auditService),
		Announcements: handlers.NewAnnouncementsHandler(announcementService, auditService),
		Gallery:       handlers.NewGalleryHandler(galleryService, auditService),
		Dashboard:     handlers.NewDashboardHandler(services.NewDashboardService(shiftService, taskService, announcementService)),
		Audit:         handlers.NewAuditHandler(auditService),
	}
	authMiddleware := middleware.NewAuthMiddleware(authService, profileService)

	bodyLimit := (cfg.Gallery.MaxUploadMB + 1) * 1024 * 1024
	app := fiber.New(fiber.Config{BodyLimit: bodyLimit})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	handlers.RegisterRoutes(app.Group("/api"), h, authMiddleware)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"address":         listenAddr,
		"body_limit_mb":   bodyLimit / (1024 * 1024),
		"storage_backend": cfg.Storage.Backend,
		"db_driver":       cfg.DB.Driver,
		"timezone":        clock.Location.String(),
		"google_sign_in":  googleService != nil,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("forced shutdown: %v", err)
		}
		if err := auditService.Close(ctx); err != nil {
			log.Printf("audit queue not drained: %v", err)
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
