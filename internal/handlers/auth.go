package handlers

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hospoda/shiftboard/internal/middleware"
	"github.com/hospoda/shiftboard/internal/services"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
)

const oauthStateCookie = "hospoda_oauth_state"

// GoogleSignIn is the part of the Google code flow the handlers drive.
type GoogleSignIn interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*services.GoogleProfile, error)
}

type AuthHandler struct {
	Auth        *services.AuthService
	Profiles    *services.ProfileService
	Google      GoogleSignIn
	Audit       *services.AuditService
	FrontendURL string
}

// NewAuthHandler leaves Google unset when google is nil, which turns the
// Google routes into 404s.
func NewAuthHandler(auth *services.AuthService, profiles *services.ProfileService, google *services.GoogleOAuthService, audit *services.AuditService, frontendURL string) *AuthHandler {
	h := &AuthHandler{Auth: auth, Profiles: profiles, Audit: audit, FrontendURL: frontendURL}
	if google != nil {
		h.Google = google
	}
	return h
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName" validate:"max=150"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.Auth.Register(c.UserContext(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return handleServiceError(c, err, "register_failed")
	}

	recordAudit(h.Audit, c, sessionOf(result), "user.register", "user", &result.Identity.ID, map[string]interface{}{
		"email": result.Identity.Email,
	})
	return h.respondWithToken(c, fiber.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err, "login_failed")
	}

	logger.Info("user_login", map[string]interface{}{
		"user_id": result.Identity.ID.String(),
		"email":   result.Identity.Email,
		"ip":      c.IP(),
	})
	recordAudit(h.Audit, c, sessionOf(result), "user.login", "user", &result.Identity.ID, map[string]interface{}{
		"email": result.Identity.Email,
	})
	return h.respondWithToken(c, fiber.StatusOK, result)
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, status int, result *services.SignInResult) error {
	token, err := utils.GenerateToken(result.Identity, result.Profile.Role)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}
	return utils.Success(c, status, fiber.Map{"token": token, "user": result.Profile})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile := middleware.GetCurrentProfile(c)
	if profile == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return utils.Success(c, fiber.StatusOK, profile)
}

type updateMeRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=150"`
	PhotoURL    *string `json:"photoURL"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	Address     *string `json:"address"`
	BirthDate   *string `json:"birthDate"`
}

// UpdateMe edits the caller's own profile. Role and activity are managed by
// admins, so a body that names either is refused outright.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	for _, field := range []string{"role", "isActive"} {
		if _, present := raw[field]; present {
			logger.WarnWithUser(sess.UserID.String(), "profile_privilege_escalation_blocked", map[string]interface{}{
				"field": field,
			})
			return utils.Error(c, fiber.StatusForbidden, field+" cannot be changed on your own profile")
		}
	}

	var req updateMeRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.Profiles.UpdateOwn(c.UserContext(), sess, services.ProfileUpdate{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		Phone:       req.Phone,
		Address:     req.Address,
		BirthDate:   req.BirthDate,
	})
	if err != nil {
		return handleServiceError(c, err, "profile_update_failed")
	}

	recordAudit(h.Audit, c, sess, services.ActionProfileEdit, "user", &sess.UserID, nil)
	return utils.Success(c, fiber.StatusOK, updated)
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sess, ok := currentSession(c)
	if !ok {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req changePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.Auth.ChangePassword(c.UserContext(), sess.UserID, req.OldPassword, req.NewPassword); err != nil {
		return handleServiceError(c, err, "password_change_failed")
	}

	recordAudit(h.Audit, c, sess, "user.password_change", "user", &sess.UserID, nil)
	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "password updated"})
}

// GoogleLogin starts the authorization code flow. The state value is kept in a
// short-lived cookie and checked on the callback.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	if h.Google == nil {
		return utils.Error(c, fiber.StatusNotFound, "google sign-in is not enabled")
	}

	state, err := services.GenerateState()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating state")
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	if c.Query("redirect") == "false" {
		return utils.Success(c, fiber.StatusOK, fiber.Map{"url": h.Google.AuthCodeURL(state)})
	}
	return c.Redirect(h.Google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if h.Google == nil {
		return utils.Error(c, fiber.StatusNotFound, "google sign-in is not enabled")
	}

	// fail only ever puts a fixed code or a translated auth message in the URL.
	fail := func(message string) error {
		return c.Redirect(h.FrontendURL + "/login?error=" + url.QueryEscape(message))
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		logger.Warn("oauth_state_mismatch", map[string]interface{}{"ip": c.IP()})
		return fail("invalid_state")
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return fail("missing_code")
	}

	profile, err := h.Google.Exchange(c.UserContext(), code)
	if err != nil {
		logger.Error("google_exchange_failed", err, map[string]interface{}{
			"ip":         c.IP(),
			"request_id": getRequestID(c),
		})
		return fail("google_exchange_failed")
	}

	result, err := h.Auth.SignInWithGoogle(c.UserContext(), profile)
	if err != nil {
		if authErr, ok := err.(*services.AuthError); ok {
			return fail(authErr.Message())
		}
		logger.Error("google_sign_in_failed", err, nil)
		return fail("sign_in_failed")
	}

	token, err := utils.GenerateToken(result.Identity, result.Profile.Role)
	if err != nil {
		logger.Error("google_token_failed", err, nil)
		return fail("sign_in_failed")
	}

	logger.Info("sso_login_success", map[string]interface{}{
		"user_id":  result.Identity.ID.String(),
		"email":    result.Identity.Email,
		"provider": "google",
	})
	recordAudit(h.Audit, c, sessionOf(result), "user.login", "user", &result.Identity.ID, map[string]interface{}{
		"provider": "google",
	})
	return c.Redirect(h.FrontendURL + "/auth/callback?token=" + url.QueryEscape(token))
}
