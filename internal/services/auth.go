package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/pkg/logger"
	"github.com/hospoda/shiftboard/pkg/utils"
	"gorm.io/gorm"
)

const (
	AdminAlias        = "admin"
	MinPasswordLength = 6
)

const (
	CodeInvalidCredential    = "auth/invalid-credential"
	CodeUserNotFound         = "auth/user-not-found"
	CodeEmailAlreadyInUse    = "auth/email-already-in-use"
	CodeWeakPassword         = "auth/weak-password"
	CodeInvalidEmail         = "auth/invalid-email"
	CodeAdminNotConfigured   = "auth/admin-not-configured"
	CodeUserDisabled         = "auth/user-disabled"
	CodeProviderNotSupported = "auth/operation-not-allowed"
)

var authMessages = map[string]string{
	CodeInvalidCredential:    "Nesprávný email nebo heslo",
	CodeUserNotFound:         "Uživatel s tímto emailem neexistuje",
	CodeEmailAlreadyInUse:    "Email je již registrován",
	CodeWeakPassword:         "Heslo musí mít alespoň 6 znaků",
	CodeInvalidEmail:         "Neplatný formát emailu",
	CodeAdminNotConfigured:   "Admin heslo není nakonfigurované",
	CodeUserDisabled:         "Účet byl deaktivován",
	CodeProviderNotSupported: "Tento způsob přihlášení není pro účet povolen",
}

// TranslateAuthError maps a credential error code to the message shown to users.
func TranslateAuthError(code string) string {
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	return "Chyba při přihlášení"
}

type AuthError struct {
	Code string
}

func (e *AuthError) Error() string {
	return e.Code
}

func (e *AuthError) Message() string {
	return TranslateAuthError(e.Code)
}

func authErr(code string) error {
	return &AuthError{Code: code}
}

// AuthService is the credential store: password identities, the bootstrap
// admin alias and federated Google identities.
type AuthService struct {
	DB            *gorm.DB
	Profiles      *ProfileService
	AdminPassword string
}

func NewAuthService(db *gorm.DB, profiles *ProfileService, adminPassword string) *AuthService {
	return &AuthService{DB: db, Profiles: profiles, AdminPassword: adminPassword}
}

type SignInResult struct {
	Identity *models.Identity
	Profile  *models.UserProfile
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*SignInResult, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, authErr(CodeInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		return nil, authErr(CodeWeakPassword)
	}
	if s.Profiles.IsBootstrap(email) {
		return nil, authErr(CodeEmailAlreadyInUse)
	}

	var existing models.Identity
	if err := s.DB.WithContext(ctx).First(&existing, "email = ?", email).Error; err == nil {
		return nil, authErr(CodeEmailAlreadyInUse)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	identity := models.Identity{
		Email:        email,
		PasswordHash: hash,
		Provider:     models.AuthProviderPassword,
		DisplayName:  strings.TrimSpace(displayName),
	}
	if err := s.DB.WithContext(ctx).Create(&identity).Error; err != nil {
		return nil, err
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": identity.ID.String(),
		"email":   identity.Email,
	})

	return s.signIn(ctx, &identity)
}

// Login checks a password. The alias "admin" stands for the bootstrap
// administrator and is checked against the configured admin password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*SignInResult, error) {
	email = normalizeEmail(email)
	if email == AdminAlias {
		return s.loginBootstrap(ctx, password)
	}
	if email == "" || password == "" {
		return nil, authErr(CodeInvalidCredential)
	}

	var identity models.Identity
	if err := s.DB.WithContext(ctx).First(&identity, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("login_failed_user_not_found", map[string]interface{}{"email": email})
			return nil, authErr(CodeInvalidCredential)
		}
		return nil, err
	}

	if identity.PasswordHash == "" {
		return nil, authErr(CodeProviderNotSupported)
	}
	if !utils.CheckPassword(password, identity.PasswordHash) {
		logger.Warn("login_failed_invalid_password", map[string]interface{}{
			"user_id": identity.ID.String(),
		})
		return nil, authErr(CodeInvalidCredential)
	}

	return s.signIn(ctx, &identity)
}

func (s *AuthService) loginBootstrap(ctx context.Context, password string) (*SignInResult, error) {
	if s.AdminPassword == "" {
		return nil, authErr(CodeAdminNotConfigured)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(s.AdminPassword)) != 1 {
		logger.Warn("login_failed_admin_alias", nil)
		return nil, authErr(CodeInvalidCredential)
	}

	email := s.Profiles.BootstrapEmail
	var identity models.Identity
	err := s.DB.WithContext(ctx).First(&identity, "email = ?", email).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		identity = models.Identity{
			Email:        email,
			PasswordHash: hash,
			Provider:     models.AuthProviderPassword,
			DisplayName:  BootstrapDisplayName,
		}
		if err := s.DB.WithContext(ctx).Create(&identity).Error; err != nil {
			return nil, err
		}
		logger.Info("bootstrap_admin_created", map[string]interface{}{"user_id": identity.ID.String()})
	case err != nil:
		return nil, err
	case !utils.CheckPassword(password, identity.PasswordHash):
		// The configured password changed since the identity was created.
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		if err := s.DB.WithContext(ctx).Model(&identity).Update("password_hash", hash).Error; err != nil {
			return nil, err
		}
		logger.Info("bootstrap_admin_password_rotated", map[string]interface{}{"user_id": identity.ID.String()})
	}

	return s.signIn(ctx, &identity)
}

// GoogleProfile is what a verified Google ID token tells us about the user.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// SignInWithGoogle finds the identity by Google subject, links an existing
// identity with the same verified email, or creates a new one.
func (s *AuthService) SignInWithGoogle(ctx context.Context, gp *GoogleProfile) (*SignInResult, error) {
	if gp.Subject == "" {
		return nil, authErr(CodeInvalidCredential)
	}
	email := normalizeEmail(gp.Email)

	var identity models.Identity
	err := s.DB.WithContext(ctx).First(&identity, "provider = ? AND provider_subject = ?", models.AuthProviderGoogle, gp.Subject).Error
	if err == nil {
		return s.signIn(ctx, &identity)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if email == "" || !gp.EmailVerified {
		return nil, authErr(CodeInvalidEmail)
	}
	if s.Profiles.IsBootstrap(email) {
		return nil, authErr(CodeProviderNotSupported)
	}

	subject := gp.Subject
	err = s.DB.WithContext(ctx).First(&identity, "email = ?", email).Error
	switch {
	case err == nil:
		if err := s.DB.WithContext(ctx).Model(&identity).Updates(map[string]interface{}{
			"provider":         models.AuthProviderGoogle,
			"provider_subject": subject,
		}).Error; err != nil {
			return nil, err
		}
		logger.Info("google_identity_linked", map[string]interface{}{"user_id": identity.ID.String()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		identity = models.Identity{
			Email:           email,
			Provider:        models.AuthProviderGoogle,
			ProviderSubject: &subject,
			DisplayName:     strings.TrimSpace(gp.Name),
		}
		if gp.Picture != "" {
			picture := gp.Picture
			identity.PhotoURL = &picture
		}
		if err := s.DB.WithContext(ctx).Create(&identity).Error; err != nil {
			return nil, err
		}
		logger.Info("user_registered", map[string]interface{}{
			"user_id":  identity.ID.String(),
			"email":    identity.Email,
			"provider": string(models.AuthProviderGoogle),
		})
	default:
		return nil, err
	}

	return s.signIn(ctx, &identity)
}

func (s *AuthService) signIn(ctx context.Context, identity *models.Identity) (*SignInResult, error) {
	profile, err := s.Profiles.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, authErr(CodeUserDisabled)
	}
	return &SignInResult{Identity: identity, Profile: profile}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, identityID uuid.UUID, oldPassword, newPassword string) error {
	var identity models.Identity
	if err := s.DB.WithContext(ctx).First(&identity, "id = ?", identityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.Profiles.IsBootstrap(identity.Email) {
		return ErrBootstrapProtected
	}
	if identity.PasswordHash == "" || !utils.CheckPassword(oldPassword, identity.PasswordHash) {
		return authErr(CodeInvalidCredential)
	}
	if len(newPassword) < MinPasswordLength {
		return authErr(CodeWeakPassword)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&identity).Update("password_hash", hash).Error
}

// FindIdentity loads the identity behind a session token.
func (s *AuthService) FindIdentity(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	var identity models.Identity
	if err := s.DB.WithContext(ctx).First(&identity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}
