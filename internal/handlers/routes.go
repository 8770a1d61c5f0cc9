package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/middleware"
)

// Handlers bundles every HTTP handler the API mounts.
type Handlers struct {
	Version       *VersionHandler
	Auth          *AuthHandler
	Employees     *EmployeesHandler
	Shifts        *ShiftsHandler
	Tasks         *TasksHandler
	Announcements *AnnouncementsHandler
	Gallery       *GalleryHandler
	Dashboard     *DashboardHandler
	Audit         *AuditHandler
}

// RegisterRoutes mounts the API under router. Role checks for mutations live
// in the services; AdminOnly only guards whole admin sections.
func RegisterRoutes(router fiber.Router, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	router.Get("/version", h.Version.Get)

	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.Auth.Register)
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Get("/google", h.Auth.GoogleLogin)
	authRoutes.Get("/google/callback", h.Auth.GoogleCallback)
	authRoutes.Get("/me", authMiddleware.RequireAuth, h.Auth.Me)
	authRoutes.Put("/me", authMiddleware.RequireAuth, h.Auth.UpdateMe)
	authRoutes.Put("/password", authMiddleware.RequireAuth, h.Auth.ChangePassword)

	router.Get("/dashboard", authMiddleware.RequireAuth, h.Dashboard.Get)

	employeeRoutes := router.Group("/employees", authMiddleware.RequireAuth, middleware.AdminOnly)
	employeeRoutes.Get("/", h.Employees.List)
	employeeRoutes.Post("/backfill", h.Employees.Backfill)
	employeeRoutes.Get("/:id", h.Employees.Get)
	employeeRoutes.Put("/:id", h.Employees.Update)
	employeeRoutes.Delete("/:id", h.Employees.Delete)

	shiftRoutes := router.Group("/shifts", authMiddleware.RequireAuth)
	shiftRoutes.Get("/", h.Shifts.List)
	shiftRoutes.Get("/calendar", h.Shifts.Calendar)
	shiftRoutes.Get("/print", h.Shifts.Print)
	shiftRoutes.Get("/templates", h.Shifts.Templates)
	shiftRoutes.Post("/", h.Shifts.Create)
	shiftRoutes.Post("/bulk", h.Shifts.BulkCreate)
	shiftRoutes.Get("/:id", h.Shifts.Get)
	shiftRoutes.Put("/:id", h.Shifts.Update)
	shiftRoutes.Delete("/:id", h.Shifts.Delete)
	shiftRoutes.Post("/:id/claim", h.Shifts.Claim)
	shiftRoutes.Post("/:id/release", h.Shifts.Release)
	shiftRoutes.Post("/:id/assign", h.Shifts.Assign)

	taskRoutes := router.Group("/tasks", authMiddleware.RequireAuth)
	taskRoutes.Get("/", h.Tasks.List)
	taskRoutes.Post("/", h.Tasks.Create)
	taskRoutes.Put("/:id", h.Tasks.Update)
	taskRoutes.Delete("/:id", h.Tasks.Delete)
	taskRoutes.Post("/:id/toggle", h.Tasks.Toggle)

	announcementRoutes := router.Group("/announcements", authMiddleware.RequireAuth)
	announcementRoutes.Get("/", h.Announcements.List)
	announcementRoutes.Post("/", h.Announcements.Create)
	announcementRoutes.Put("/:id", h.Announcements.Update)
	announcementRoutes.Delete("/:id", h.Announcements.Delete)

	galleryRoutes := router.Group("/gallery", authMiddleware.RequireAuth)
	galleryRoutes.Get("/", h.Gallery.List)
	galleryRoutes.Post("/", h.Gallery.Upload)
	galleryRoutes.Post("/:id/like", h.Gallery.Like)
	galleryRoutes.Delete("/:id/like", h.Gallery.Unlike)
	galleryRoutes.Post("/:id/like/toggle", h.Gallery.ToggleLike)
	galleryRoutes.Delete("/:id", h.Gallery.Delete)

	auditRoutes := router.Group("/audit", authMiddleware.RequireAuth, middleware.AdminOnly)
	auditRoutes.Get("/", h.Audit.List)
	auditRoutes.Get("/export", h.Audit.Export)
}
