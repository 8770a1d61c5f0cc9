package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/pkg/utils"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard}
}

func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summary, err := h.Dashboard.Summary(c.UserContext(), sess)
	if err != nil {
		return handleServiceError(c, err, "dashboard_failed")
	}
	return utils.Success(c, fiber.StatusOK, summary)
}
