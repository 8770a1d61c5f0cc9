package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/utils"
)

type GalleryHandler struct {
	Gallery *services.GalleryService
	Audit   *services.AuditService
}

func NewGalleryHandler(gallery *services.GalleryService, audit *services.AuditService) *GalleryHandler {
	return &GalleryHandler{Gallery: gallery, Audit: audit}
}

func (h *GalleryHandler) List(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	photos, err := h.Gallery.List(c.UserContext(), sess)
	if err != nil {
		return handleServiceError(c, err, "gallery_list_failed")
	}
	return utils.Success(c, fiber.StatusOK, photos)
}

func (h *GalleryHandler) Upload(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "photo is required")
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	photo, err := h.Gallery.Upload(c.UserContext(), sess, services.PhotoUpload{
		Reader:      stream,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Caption:     strings.TrimSpace(c.FormValue("caption")),
	})
	if err != nil {
		return handleServiceError(c, err, "photo_upload_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionPhotoUpload, "photo", &photo.ID, map[string]interface{}{
		"size": photo.Size,
	})
	return utils.Success(c, fiber.StatusCreated, photo)
}

type likeFunc func(c *fiber.Ctx, sess session.Session, id uuid.UUID) ([]string, error)

func (h *GalleryHandler) likeAction(c *fiber.Ctx, fn likeFunc) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid photo id")
	}

	likes, err := fn(c, sess, id)
	if err != nil {
		return handleServiceError(c, err, "photo_like_failed")
	}

	liked := false
	for _, uid := range likes {
		if uid == sess.UserID.String() {
			liked = true
			break
		}
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"likes": likes, "liked": liked})
}

func (h *GalleryHandler) Like(c *fiber.Ctx) error {
	return h.likeAction(c, func(c *fiber.Ctx, sess session.Session, id uuid.UUID) ([]string, error) {
		return h.Gallery.Like(c.UserContext(), sess, id)
	})
}

func (h *GalleryHandler) Unlike(c *fiber.Ctx) error {
	return h.likeAction(c, func(c *fiber.Ctx, sess session.Session, id uuid.UUID) ([]string, error) {
		return h.Gallery.Unlike(c.UserContext(), sess, id)
	})
}

func (h *GalleryHandler) ToggleLike(c *fiber.Ctx) error {
	return h.likeAction(c, func(c *fiber.Ctx, sess session.Session, id uuid.UUID) ([]string, error) {
		return h.Gallery.ToggleLike(c.UserContext(), sess, id)
	})
}

func (h *GalleryHandler) Delete(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid photo id")
	}

	if err := h.Gallery.Delete(c.UserContext(), sess, id); err != nil {
		return handleServiceError(c, err, "photo_delete_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionPhotoDelete, "photo", &id, nil)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "photo deleted"})
}
