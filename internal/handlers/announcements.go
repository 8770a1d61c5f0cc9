package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/pkg/utils"
)

type AnnouncementsHandler struct {
	Announcements *services.AnnouncementService
	Audit         *services.AuditService
}

func NewAnnouncementsHandler(announcements *services.AnnouncementService, audit *services.AuditService) *AnnouncementsHandler {
	return &AnnouncementsHandler{Announcements: announcements, Audit: audit}
}

func (h *AnnouncementsHandler) List(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	announcements, err := h.Announcements.ListActive(c.UserContext(), sess, c.QueryBool("all", false), utils.QueryInt(c, "limit", 0))
	if err != nil {
		return handleServiceError(c, err, "announcement_list_failed")
	}
	return utils.Success(c, fiber.StatusOK, announcements)
}

func (h *AnnouncementsHandler) Create(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req services.AnnouncementInput
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	announcement, err := h.Announcements.Create(c.UserContext(), sess, req)
	if err != nil {
		return handleServiceError(c, err, "announcement_create_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionAnnouncementCreate, "announcement", &announcement.ID, map[string]interface{}{
		"title": announcement.Title,
	})
	return utils.Success(c, fiber.StatusCreated, announcement)
}

func (h *AnnouncementsHandler) Update(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	var req services.AnnouncementUpdate
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	announcement, err := h.Announcements.Update(c.UserContext(), sess, id, req)
	if err != nil {
		return handleServiceError(c, err, "announcement_update_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionAnnouncementUpdate, "announcement", &announcement.ID, map[string]interface{}{
		"title": announcement.Title,
	})
	return utils.Success(c, fiber.StatusOK, announcement)
}

func (h *AnnouncementsHandler) Delete(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid announcement id")
	}

	if err := h.Announcements.Delete(c.UserContext(), sess, id); err != nil {
		return handleServiceError(c, err, "announcement_delete_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionAnnouncementDelete, "announcement", &id, nil)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "announcement deleted"})
}
