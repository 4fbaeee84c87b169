package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
)

// CompanyService manages tenant records.
type CompanyService struct {
	db *gorm.DB
}

// NewCompanyService constructs a CompanyService instance.
func NewCompanyService(db *gorm.DB) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	return &CompanyService{db: db}, nil
}

// CreateCompanyInput describes the fields accepted when creating a company.
type CreateCompanyInput struct {
	Name     string
	LogoURL  string
	Settings datatypes.JSON
}

// UpdateCompanyInput enumerates mutable company attributes.
type UpdateCompanyInput struct {
	Name     *string
	LogoURL  *string
	Settings datatypes.JSON
}

// Create provisions a new company.
func (s *CompanyService) Create(ctx context.Context, input CreateCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("company name is required")
	}

	company := &models.Company{
		Name:     name,
		LogoURL:  strings.TrimSpace(input.LogoURL),
		Settings: input.Settings,
	}

	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("company name already exists")
		}
		return nil, fmt.Errorf("company service: create company: %w", err)
	}

	return company, nil
}

// List returns all companies ordered by name.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	ctx = ensureContext(ctx)

	var companies []models.Company
	if err := s.db.WithContext(ctx).
		Order("name ASC").
		Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("company service: list companies: %w", err)
	}
	return companies, nil
}

// GetByID loads a single company.
func (s *CompanyService) GetByID(ctx context.Context, id string) (*models.Company, error) {
	ctx = ensureContext(ctx)

	var company models.Company
	err := s.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("company service: get company: %w", err)
	}
	return &company, nil
}

// Update applies a partial update to a company.
func (s *CompanyService) Update(ctx context.Context, id string, input UpdateCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)

	company, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("company name cannot be empty")
		}
		updates["name"] = name
		company.Name = name
	}
	if input.LogoURL != nil {
		logo := strings.TrimSpace(*input.LogoURL)
		updates["logo_url"] = logo
		company.LogoURL = logo
	}
	if input.Settings != nil {
		updates["settings"] = input.Settings
		company.Settings = input.Settings
	}

	if len(updates) == 0 {
		return company, nil
	}

	if err := s.db.WithContext(ctx).Model(company).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("company name already exists")
		}
		return nil, fmt.Errorf("company service: update company: %w", err)
	}

	return company, nil
}

// Delete removes a company and detaches its users. Accounts survive with no
// company rather than being cascaded away.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	company, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("company_id = ?", company.ID).
			Update("company_id", nil).Error; err != nil {
			return fmt.Errorf("detach users: %w", err)
		}
		if err := tx.Delete(company).Error; err != nil {
			return fmt.Errorf("delete company: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("company service: delete company: %w", err)
	}

	return nil
}
