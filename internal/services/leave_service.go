package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
)

// LeaveOption customises the LeaveService.
type LeaveOption func(*LeaveService)

// WithLeaveClock injects a custom time source, primarily for testing.
func WithLeaveClock(clock func() time.Time) LeaveOption {
	return func(s *LeaveService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// LeaveService manages the leave request lifecycle. Requests start PENDING
// and transition exactly once to APPROVED or REJECTED.
type LeaveService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLeaveService constructs a LeaveService instance.
func NewLeaveService(db *gorm.DB, opts ...LeaveOption) (*LeaveService, error) {
	if db == nil {
		return nil, errors.New("leave service: db is required")
	}

	service := &LeaveService{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateLeaveInput describes a new leave request.
type CreateLeaveInput struct {
	Type      models.LeaveType
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Create files a new leave request for the user.
func (s *LeaveService) Create(ctx context.Context, userID string, input CreateLeaveInput) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	if !input.Type.Valid() {
		return nil, apperrors.NewBadRequest("unknown leave type")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, apperrors.NewBadRequest("start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, apperrors.NewBadRequest("end date must not precede start date")
	}

	request := &models.LeaveRequest{
		UserID:    userID,
		Type:      input.Type,
		StartDate: dayOf(input.StartDate),
		EndDate:   dayOf(input.EndDate),
		Reason:    input.Reason,
		Status:    models.LeavePending,
	}

	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, fmt.Errorf("leave service: create request: %w", err)
	}

	return request, nil
}

// ListForUser returns the user's leave requests, newest first.
func (s *LeaveService) ListForUser(ctx context.Context, userID string) ([]models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	var requests []models.LeaveRequest
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("leave service: list requests: %w", err)
	}
	return requests, nil
}

// ListPending returns PENDING requests awaiting review. A company id scopes
// the listing to that company's users; nil means all companies.
func (s *LeaveService) ListPending(ctx context.Context, companyID *string) ([]models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).
		Where("status = ?", models.LeavePending).
		Order("leave_requests.created_at ASC").
		Preload("User")

	if companyID != nil {
		query = query.
			Joins("JOIN users ON users.id = leave_requests.user_id").
			Where("users.company_id = ?", *companyID)
	}

	var requests []models.LeaveRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("leave service: list pending: %w", err)
	}
	return requests, nil
}

// Review approves or rejects a pending leave request. Admins may only review
// requests from their own company; the transition is guarded on PENDING so a
// request cannot be decided twice.
func (s *LeaveService) Review(ctx context.Context, reviewer *auth.Claims, requestID string, approve bool) (*models.LeaveRequest, error) {
	ctx = ensureContext(ctx)

	if reviewer == nil {
		return nil, apperrors.ErrUnauthorized
	}

	var request models.LeaveRequest
	err := s.db.WithContext(ctx).
		Preload("User").
		First(&request, "id = ?", requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leave service: find request: %w", err)
	}

	if reviewer.Role != models.RoleSuperAdmin {
		if reviewer.CompanyID == nil || request.User == nil ||
			request.User.CompanyID == nil || *request.User.CompanyID != *reviewer.CompanyID {
			return nil, apperrors.ErrForbidden
		}
	}

	if request.Status != models.LeavePending {
		return nil, apperrors.NewBadRequest("leave request has already been reviewed")
	}

	status := models.LeaveRejected
	if approve {
		status = models.LeaveApproved
	}
	now := s.now()

	result := s.db.WithContext(ctx).
		Model(&models.LeaveRequest{}).
		Where("id = ? AND status = ?", request.ID, models.LeavePending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewer.UserID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("leave service: review request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NewBadRequest("leave request has already been reviewed")
	}

	request.Status = status
	request.ReviewedBy = &reviewer.UserID
	request.ReviewedAt = &now
	return &request, nil
}
