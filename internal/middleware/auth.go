package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
)

const (
	sessionKey = "session"
	profileKey = "profile"
)

type AuthMiddleware struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
}

func NewAuthMiddleware(auth *services.AuthService, profiles *services.ProfileService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth, Profiles: profiles}
}

func CORS(origins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: false,
	})
}

// RequireAuth validates the bearer token and resolves the caller's profile.
// The role always comes from the profile, never from the token.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		logger.Warn("jwt_missing_header", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if tokenString == authHeader || tokenString == "" {
		logger.Warn("jwt_invalid_format", map[string]interface{}{
			"ip":          c.IP(),
			"path":        c.Path(),
			"auth_header": authHeader[:min(len(authHeader), 20)] + "...",
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("jwt_validation_failed", map[string]interface{}{
			"ip":    c.IP(),
			"path":  c.Path(),
			"error": err.Error(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "invalid or expired token")
	}

	identity, err := a.Auth.FindIdentity(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			logger.Warn("jwt_user_not_found", map[string]interface{}{
				"ip":      c.IP(),
				"path":    c.Path(),
				"user_id": claims.UserID.String(),
			})
			return utils.Error(c, fiber.StatusUnauthorized, "user not found")
		}
		logger.Error("jwt_identity_lookup_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "failed to load user")
	}

	profile, err := a.Profiles.Resolve(c.UserContext(), identity)
	if err != nil {
		logger.Error("profile_resolve_failed", err, map[string]interface{}{
			"user_id": identity.ID.String(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "failed to load profile")
	}
	if !profile.IsActive {
		logger.WarnWithUser(profile.UID.String(), "inactive_profile_rejected", map[string]interface{}{
			"path": c.Path(),
		})
		return utils.ErrorWithCode(c, fiber.StatusForbidden, services.CodeUserDisabled,
			services.TranslateAuthError(services.CodeUserDisabled))
	}

	c.Locals(sessionKey, session.FromProfile(profile))
	c.Locals(profileKey, profile)
	c.Locals("userID", profile.UID.String())
	return c.Next()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func AdminOnly(c *fiber.Ctx) error {
	sess, ok := GetSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !sess.IsAdmin() {
		return utils.Error(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}

func GetSession(c *fiber.Ctx) (session.Session, bool) {
	sess, ok := c.Locals(sessionKey).(session.Session)
	return sess, ok
}

func GetCurrentProfile(c *fiber.Ctx) *models.UserProfile {
	profile, ok := c.Locals(profileKey).(*models.UserProfile)
	if !ok {
		return nil
	}
	return profile
}
