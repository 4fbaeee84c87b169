package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
)

// UserAdminService exposes the administrative user directory. All methods
// take the caller's claims and scope results to their company unless the
// caller is SUPER_ADMIN.
type UserAdminService struct {
	db *gorm.DB
}

// NewUserAdminService constructs a UserAdminService instance.
func NewUserAdminService(db *gorm.DB) (*UserAdminService, error) {
	if db == nil {
		return nil, errors.New("user admin service: db is required")
	}
	return &UserAdminService{db: db}, nil
}

// List returns the users visible to the caller, newest first.
func (s *UserAdminService) List(ctx context.Context, actor *auth.Claims) ([]models.User, error) {
	ctx = ensureContext(ctx)

	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}

	query := s.db.WithContext(ctx).
		Model(&models.User{}).
		Order("created_at DESC").
		Preload("Company")

	if actor.Role != models.RoleSuperAdmin {
		if actor.CompanyID == nil {
			return []models.User{}, nil
		}
		query = query.Where("company_id = ?", *actor.CompanyID)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user admin service: list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput enumerates the attributes an administrator may change.
type UpdateUserInput struct {
	Role      *models.Role
	CompanyID *string
}

// Update applies administrative changes to a user. Role and company changes
// are restricted to SUPER_ADMIN.
func (s *UserAdminService) Update(ctx context.Context, actor *auth.Claims, userID string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if actor == nil {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.load(ctx, actor, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Role != nil {
		if actor.Role != models.RoleSuperAdmin {
			return nil, apperrors.ErrForbidden
		}
		if !input.Role.Valid() {
			return nil, apperrors.NewBadRequest("unknown role")
		}
		updates["role"] = *input.Role
		user.Role = *input.Role
	}
	if input.CompanyID != nil {
		if actor.Role != models.RoleSuperAdmin {
			return nil, apperrors.ErrForbidden
		}
		updates["company_id"] = *input.CompanyID
		user.CompanyID = input.CompanyID
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user admin service: update user: %w", err)
	}

	return user, nil
}

// Delete removes a user account. Callers cannot delete themselves.
func (s *UserAdminService) Delete(ctx context.Context, actor *auth.Claims, userID string) error {
	ctx = ensureContext(ctx)

	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	if actor.UserID == userID {
		return apperrors.NewBadRequest("cannot delete your own account")
	}

	user, err := s.load(ctx, actor, userID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(user).Error; err != nil {
		return fmt.Errorf("user admin service: delete user: %w", err)
	}
	return nil
}

// load fetches a user and enforces company scoping for non-super admins.
func (s *UserAdminService) load(ctx context.Context, actor *auth.Claims, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user admin service: get user: %w", err)
	}

	if actor.Role != models.RoleSuperAdmin {
		if actor.CompanyID == nil || user.CompanyID == nil || *user.CompanyID != *actor.CompanyID {
			return nil, apperrors.ErrNotFound
		}
	}

	return &user, nil
}
