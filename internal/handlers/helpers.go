package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/middleware"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func getRequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestID").(string); ok {
		return id
	}
	return c.Get("X-Request-ID")
}

var errInvalidBody = errors.New("invalid request body")

// parseBody decodes the request body and runs its validate tags. The returned
// error message is safe to send back to the client.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0]
			return fmt.Errorf("%s failed %s validation", lowerFirst(field.Field()), field.Tag())
		}
		return errInvalidBody
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func currentSession(c *fiber.Ctx) (session.Session, bool) {
	return middleware.GetSession(c)
}

func sessionOf(result *services.SignInResult) session.Session {
	return session.FromProfile(result.Profile)
}

// handleServiceError turns a service error into the JSON error envelope.
func handleServiceError(c *fiber.Ctx, err error, action string) error {
	var authErr *services.AuthError
	switch {
	case errors.As(err, &authErr):
		return utils.ErrorWithCode(c, authStatus(authErr.Code), authErr.Code, authErr.Message())
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrBootstrapProtected),
		errors.Is(err, services.ErrSelfRoleChange):
		return utils.Error(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrSelfDelete):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrShiftNotOpen),
		errors.Is(err, services.ErrShiftNotAssigned),
		errors.Is(err, services.ErrShiftInPast),
		errors.Is(err, services.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	}

	details := map[string]interface{}{"path": c.Path(), "request_id": getRequestID(c)}
	if userID := logger.GetUserIDFromContext(c); userID != nil {
		logger.ErrorWithUser(*userID, action, err, details)
	} else {
		logger.Error(action, err, details)
	}
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}

func authStatus(code string) int {
	switch code {
	case services.CodeInvalidCredential, services.CodeUserNotFound:
		return fiber.StatusUnauthorized
	case services.CodeEmailAlreadyInUse:
		return fiber.StatusConflict
	case services.CodeUserDisabled:
		return fiber.StatusForbidden
	case services.CodeAdminNotConfigured:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadRequest
	}
}

// recordAudit enqueues an audit row. The actor's display name goes into the
// details so the log can be rendered without joins.
func recordAudit(audit *services.AuditService, c *fiber.Ctx, sess session.Session, action services.Action, resourceType string, resourceID *uuid.UUID, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["actor_name"] = sess.DisplayName

	userID := sess.UserID
	audit.LogAsync(services.AuditEntry{
		UserID:       &userID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})
}
