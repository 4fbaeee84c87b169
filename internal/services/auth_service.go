package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/pkg/crypto"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/logger"
	"github.com/SugiKent/attendance-system/pkg/metrics"
)

// verificationTokenTTL bounds how long an emailed verification link stays valid.
const verificationTokenTTL = 24 * time.Hour

// AuthOption customises the AuthService.
type AuthOption func(*AuthService)

// WithAuthClock injects a custom time source, primarily for testing.
func WithAuthClock(clock func() time.Time) AuthOption {
	return func(s *AuthService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AuthService implements registration, login and the email verification
// lifecycle. Session tokens are stateless JWTs; verification tokens live on
// the user row and are single use.
type AuthService struct {
	db     *gorm.DB
	tokens *auth.JWTService
	sender *VerificationSender
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(db *gorm.DB, tokens *auth.JWTService, sender *VerificationSender, opts ...AuthOption) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	if sender == nil {
		return nil, errors.New("auth service: verification sender is required")
	}

	service := &AuthService{
		db:     db,
		tokens: tokens,
		sender: sender,
		log:    logger.WithModule("auth"),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RegisterInput describes the fields accepted when registering an account.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	CompanyID *string
}

// Register creates an unverified account and dispatches a verification email.
// The company a new user lands in depends on who is calling: SUPER_ADMIN may
// target any company, ADMIN always gets their own, anonymous callers none.
// Mail delivery failures are logged but never fail the registration.
func (s *AuthService) Register(ctx context.Context, actor *auth.Claims, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if name == "" {
		return nil, apperrors.NewBadRequest("name is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	var companyID *string
	if actor != nil {
		switch actor.Role {
		case models.RoleSuperAdmin:
			companyID = input.CompanyID
		case models.RoleAdmin:
			companyID = actor.CompanyID
		}
	}

	now := s.now()
	token := uuid.NewString()
	expiry := now.Add(verificationTokenTTL)

	user := &models.User{
		Email:                   email,
		Password:                hashed,
		Name:                    name,
		Role:                    models.RoleEmployee,
		CompanyID:               companyID,
		IsEmailVerified:         false,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	if user.CompanyID != nil {
		var company models.Company
		if err := s.db.WithContext(ctx).First(&company, "id = ?", *user.CompanyID).Error; err == nil {
			user.Company = &company
		}
	}

	if err := s.sender.Send(ctx, user, token); err != nil {
		metrics.VerificationEmails.WithLabelValues("failed").Inc()
		s.log.Warn("verification email delivery failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	} else {
		metrics.VerificationEmails.WithLabelValues("sent").Inc()
	}

	return user, nil
}

// SetupAdminInput describes the first-administrator bootstrap request.
type SetupAdminInput struct {
	Email    string
	Password string
	Name     string
}

// SetupAdmin provisions the very first administrator account, pre-verified,
// and returns a session token. It refuses once any admin exists so the
// endpoint cannot be replayed on a live installation.
func (s *AuthService) SetupAdmin(ctx context.Context, input SetupAdminInput) (*models.User, string, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || strings.TrimSpace(input.Password) == "" {
		return nil, "", apperrors.NewBadRequest("email, password and name are required")
	}

	var admins int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role IN ?", []models.Role{models.RoleAdmin, models.RoleSuperAdmin}).
		Count(&admins).Error; err != nil {
		return nil, "", fmt.Errorf("auth service: count admins: %w", err)
	}
	if admins > 0 {
		return nil, "", apperrors.ErrForbidden
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("auth service: hash password: %w", err)
	}

	user := &models.User{
		Email:           email,
		Password:        hashed,
		Name:            name,
		Role:            models.RoleAdmin,
		IsEmailVerified: true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, "", apperrors.ErrEmailTaken
		}
		return nil, "", fmt.Errorf("auth service: create admin: %w", err)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login authenticates an email/password pair and returns the user plus a
// session token. Unknown emails and wrong passwords produce the identical
// error so responses cannot be used to probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Company").
		First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("auth service: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if !user.IsEmailVerified {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, "", apperrors.ErrEmailNotVerified
	}

	token, err := s.issueSession(&user)
	if err != nil {
		return nil, "", err
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, token, nil
}

// VerifyEmail consumes a verification token, marks the account verified and
// returns a fresh session token. The update is guarded on the stored token so
// a concurrent resend or verification cannot double-spend it.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, token string) (*models.User, string, error) {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if strings.TrimSpace(userID) == "" || token == "" {
		return nil, "", apperrors.NewBadRequest("userId and token are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperrors.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("auth service: find user: %w", err)
	}

	if user.IsEmailVerified {
		return nil, "", apperrors.ErrAlreadyVerified
	}
	if user.VerificationToken == nil || *user.VerificationToken != token {
		return nil, "", apperrors.ErrInvalidVerificationToken
	}
	if user.VerificationTokenExpiry == nil || user.VerificationTokenExpiry.Before(s.now()) {
		return nil, "", apperrors.ErrInvalidVerificationToken
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND verification_token = ?", user.ID, token).
		Updates(map[string]any{
			"is_email_verified":         true,
			"verification_token":        nil,
			"verification_token_expiry": nil,
		})
	if result.Error != nil {
		return nil, "", fmt.Errorf("auth service: mark verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, "", apperrors.ErrInvalidVerificationToken
	}

	user.IsEmailVerified = true
	user.VerificationToken = nil
	user.VerificationTokenExpiry = nil

	session, err := s.issueSession(&user)
	if err != nil {
		return nil, "", err
	}

	return &user, session, nil
}

// ResendVerification issues a fresh verification token, superseding any
// previous one, and emails it. Unknown addresses succeed silently so the
// endpoint does not reveal which emails are registered. Unlike registration,
// a delivery failure here is surfaced to the caller.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if email == "" {
		return apperrors.NewBadRequest("email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Company").
		First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("auth service: find user: %w", err)
	}

	if user.IsEmailVerified {
		return apperrors.ErrAlreadyVerified
	}

	token := uuid.NewString()
	expiry := s.now().Add(verificationTokenTTL)

	if err := s.db.WithContext(ctx).
		Model(&user).
		Updates(map[string]any{
			"verification_token":        token,
			"verification_token_expiry": expiry,
		}).Error; err != nil {
		return fmt.Errorf("auth service: store token: %w", err)
	}

	user.VerificationToken = &token
	user.VerificationTokenExpiry = &expiry

	if err := s.sender.Send(ctx, &user, token); err != nil {
		metrics.VerificationEmails.WithLabelValues("failed").Inc()
		return apperrors.ErrInternalServer.WithInternal(err)
	}

	metrics.VerificationEmails.WithLabelValues("sent").Inc()
	return nil
}

// CurrentUser loads the account behind a session token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Company").
		First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: get user: %w", err)
	}
	return &user, nil
}

// UpdateProfileInput enumerates the mutable profile attributes.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// UpdateProfile applies name and email changes for the given user. Email
// uniqueness is enforced excluding the user's own row.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: get user: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("name cannot be empty")
		}
		updates["name"] = name
		user.Name = name
	}
	if input.Email != nil {
		email := normaliseEmail(*input.Email)
		if email == "" {
			return nil, apperrors.NewBadRequest("email cannot be empty")
		}
		if email != user.Email {
			var taken int64
			if err := s.db.WithContext(ctx).
				Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&taken).Error; err != nil {
				return nil, fmt.Errorf("auth service: check email: %w", err)
			}
			if taken > 0 {
				return nil, apperrors.ErrEmailTaken
			}
			updates["email"] = email
			user.Email = email
		}
	}

	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("auth service: update profile: %w", err)
	}

	return &user, nil
}

// ChangePassword replaces the user's password after checking the current one.
// A wrong current password is reported the same way as a failed login.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("auth service: get user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&user).
		Update("password", hashed).Error; err != nil {
		return fmt.Errorf("auth service: update password: %w", err)
	}

	return nil
}

func (s *AuthService) issueSession(user *models.User) (string, error) {
	token, err := s.tokens.GenerateAccessToken(auth.AccessTokenInput{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	})
	if err != nil {
		return "", fmt.Errorf("auth service: issue session: %w", err)
	}
	return token, nil
}
