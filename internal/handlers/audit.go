package handlers

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/pkg/utils"
)

const auditExportLimit = 10000

type AuditHandler struct {
	Audit *services.AuditService
}

func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

func (h *AuditHandler) filter(c *fiber.Ctx) (services.AuditFilter, error) {
	filter := services.AuditFilter{
		ResourceType: strings.TrimSpace(c.Query("resourceType")),
		Action:       strings.TrimSpace(c.Query("action")),
	}
	if raw := c.Query("resourceId"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid resourceId")
		}
		filter.ResourceID = &id
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid userId")
		}
		filter.UserID = &id
	}
	return filter, nil
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	filter, err := h.filter(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	p := utils.ParsePagination(c)
	records, total, err := h.Audit.List(c.UserContext(), sess, filter, p)
	if err != nil {
		return handleServiceError(c, err, "audit_list_failed")
	}
	return utils.Paginated(c, records, p.Page, p.Limit, total)
}

// Export writes the filtered log as CSV, one described row per entry.
func (h *AuditHandler) Export(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	filter, err := h.filter(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	records, _, err := h.Audit.List(c.UserContext(), sess, filter, utils.PaginationParams{Page: 1, Limit: auditExportLimit})
	if err != nil {
		return handleServiceError(c, err, "audit_export_failed")
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "audit-log.csv"))

	writer := csv.NewWriter(c.Response().BodyWriter())
	_ = writer.Write([]string{"Timestamp", "Action", "Resource Type", "Resource ID", "Summary", "IP Address"})
	for _, record := range records {
		resourceID := ""
		if record.ResourceID != nil {
			resourceID = record.ResourceID.String()
		}
		_ = writer.Write([]string{
			record.CreatedAt.Format(time.RFC3339),
			record.Action,
			record.ResourceType,
			resourceID,
			record.Summary,
			record.IPAddress,
		})
	}
	writer.Flush()
	return writer.Error()
}
