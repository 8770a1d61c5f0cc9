package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs one entry per request. An incoming X-Request-ID is kept
// so a client retry can be traced across the audit log and request log.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(requestIDHeader)
		if requestID == "" || len(requestID) > 36 {
			requestID = logger.GenerateRequestID()
		}
		c.Locals("requestID", requestID)
		c.Set(requestIDHeader, requestID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		details := map[string]interface{}{
			"method":        c.Method(),
			"path":          c.Path(),
			"status_code":   statusCode,
			"latency_ms":    time.Since(start).Milliseconds(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"ip":            c.IP(),
			"response_body": logger.GetResponseSizeSummary(c),
			"request_id":    requestID,
		}
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			details["request_body"] = logger.GetRequestBodySummary(c)
		}

		userID := logger.GetUserIDFromContext(c)
		switch {
		case statusCode >= 500:
			if userID != nil {
				logger.ErrorWithUser(*userID, "http_request", err, details)
			} else {
				logger.Error("http_request", err, details)
			}
		case statusCode >= 400:
			if userID != nil {
				logger.WarnWithUser(*userID, "http_request", details)
			} else {
				logger.Warn("http_request", details)
			}
		case c.Path() == "/health":
			logger.Debug("http_request", details)
		default:
			if userID != nil {
				logger.InfoWithUser(*userID, "http_request", details)
			} else {
				logger.Info("http_request", details)
			}
		}

		return err
	}
}

var securityReasons = map[int]string{
	fiber.StatusUnauthorized: "unauthenticated",
	fiber.StatusForbidden:    "access_denied",
	fiber.StatusNotFound:     "not_found",
	fiber.StatusConflict:     "state_conflict",
}

// SecurityLogger records denied and conflicting requests under their own
// action so lost claim races and permission checks from the wrong role are easy to find.
func SecurityLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		reason, ok := securityReasons[c.Response().StatusCode()]
		if !ok {
			return err
		}

		userID := logger.GetUserIDFromContext(c)
		details := map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
			"ip":     c.IP(),
			"reason": reason,
		}
		if userID != nil {
			logger.WarnWithUser(*userID, reason, details)
		} else {
			logger.Warn(reason+"_unauthenticated", details)
		}

		return err
	}
}
