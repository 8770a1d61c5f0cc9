package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
)

type EmployeesHandler struct {
	Profiles *services.ProfileService
	Audit    *services.AuditService
}

func NewEmployeesHandler(profiles *services.ProfileService, audit *services.AuditService) *EmployeesHandler {
	return &EmployeesHandler{Profiles: profiles, Audit: audit}
}

func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	employees, err := h.Profiles.ListEmployees(c.UserContext(), sess)
	if err != nil {
		return handleServiceError(c, err, "employee_list_failed")
	}

	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	if search != "" {
		filtered := employees[:0]
		for _, e := range employees {
			if strings.Contains(strings.ToLower(e.DisplayName), search) || strings.Contains(strings.ToLower(e.Email), search) {
				filtered = append(filtered, e)
			}
		}
		employees = filtered
	}

	return utils.Success(c, fiber.StatusOK, employees)
}

func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !sess.IsAdmin() {
		return utils.Error(c, fiber.StatusForbidden, "insufficient permissions")
	}

	uid, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid employee id")
	}

	profile, err := h.Profiles.Get(c.UserContext(), uid)
	if err != nil {
		return handleServiceError(c, err, "employee_get_failed")
	}
	return utils.Success(c, fiber.StatusOK, profile)
}

type updateEmployeeRequest struct {
	Role       *models.UserRole `json:"role"`
	Position   *string          `json:"position" validate:"omitempty,max=100"`
	HourlyRate *float64         `json:"hourlyRate"`
	AdminNotes *string          `json:"adminNotes"`
	StartDate  *string          `json:"startDate"`
	IsActive   *bool            `json:"isActive"`
}

func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	uid, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid employee id")
	}

	var req updateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.Profiles.UpdateEmployee(c.UserContext(), sess, uid, services.EmployeeUpdate{
		Role:       req.Role,
		Position:   req.Position,
		HourlyRate: req.HourlyRate,
		AdminNotes: req.AdminNotes,
		StartDate:  req.StartDate,
		IsActive:   req.IsActive,
	})
	if err != nil {
		return handleServiceError(c, err, "employee_update_failed")
	}

	details := map[string]interface{}{"employee": updated.DisplayName}
	if req.Role != nil {
		details["role"] = string(*req.Role)
		logger.InfoWithUser(sess.UserID.String(), "employee_role_changed", map[string]interface{}{
			"employee_id": uid.String(),
			"role":        string(*req.Role),
		})
	}
	recordAudit(h.Audit, c, sess, services.ActionEmployeeUpdate, "user", &uid, details)
	return utils.Success(c, fiber.StatusOK, updated)
}

func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	uid, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid employee id")
	}

	var name string
	if existing, err := h.Profiles.Get(c.UserContext(), uid); err == nil {
		name = existing.DisplayName
	}

	if err := h.Profiles.DeleteEmployee(c.UserContext(), sess, uid); err != nil {
		return handleServiceError(c, err, "employee_delete_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionEmployeeDelete, "user", &uid, map[string]interface{}{
		"employee": name,
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "employee removed"})
}

// Backfill creates profiles for identities that signed in before profiles
// existed for them.
func (h *EmployeesHandler) Backfill(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	result, err := h.Profiles.Backfill(c.UserContext(), sess)
	if err != nil {
		return handleServiceError(c, err, "employee_backfill_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionEmployeeBackfill, "user", nil, map[string]interface{}{
		"created": len(result.Created),
		"skipped": result.Skipped,
	})
	return utils.Success(c, fiber.StatusOK, result)
}
