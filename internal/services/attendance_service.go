package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
	"github.com/SugiKent/attendance-system/pkg/metrics"
)

// AttendanceOption customises the AttendanceService.
type AttendanceOption func(*AttendanceService)

// WithAttendanceClock injects a custom time source, primarily for testing.
func WithAttendanceClock(clock func() time.Time) AttendanceOption {
	return func(s *AttendanceService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// AttendanceService records daily clock-in/out events. A user has at most one
// attendance record per calendar day, enforced both here and by the unique
// index on (user_id, work_date).
type AttendanceService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(db *gorm.DB, opts ...AttendanceOption) (*AttendanceService, error) {
	if db == nil {
		return nil, errors.New("attendance service: db is required")
	}

	service := &AttendanceService{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// ClockIn opens today's attendance record for the user.
func (s *AttendanceService) ClockIn(ctx context.Context, userID, note string) (*models.AttendanceRecord, error) {
	ctx = ensureContext(ctx)

	now := s.now()
	record := &models.AttendanceRecord{
		UserID:   userID,
		WorkDate: dayOf(now),
		ClockIn:  now,
		Note:     note,
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("user_id = ? AND work_date = ?", userID, record.WorkDate).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("attendance service: check existing: %w", err)
	}
	if existing > 0 {
		return nil, apperrors.NewBadRequest("already clocked in today")
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("already clocked in today")
		}
		return nil, fmt.Errorf("attendance service: clock in: %w", err)
	}

	metrics.ClockEvents.WithLabelValues("in").Inc()
	return record, nil
}

// ClockOut closes today's attendance record for the user.
func (s *AttendanceService) ClockOut(ctx context.Context, userID, note string) (*models.AttendanceRecord, error) {
	ctx = ensureContext(ctx)

	now := s.now()

	var record models.AttendanceRecord
	err := s.db.WithContext(ctx).
		First(&record, "user_id = ? AND work_date = ?", userID, dayOf(now)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewBadRequest("no clock-in recorded for today")
	}
	if err != nil {
		return nil, fmt.Errorf("attendance service: find record: %w", err)
	}

	if record.ClockOut != nil {
		return nil, apperrors.NewBadRequest("already clocked out today")
	}

	updates := map[string]any{"clock_out": now}
	if note != "" {
		updates["note"] = note
		record.Note = note
	}

	if err := s.db.WithContext(ctx).
		Model(&record).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("attendance service: clock out: %w", err)
	}

	record.ClockOut = &now
	metrics.ClockEvents.WithLabelValues("out").Inc()
	return &record, nil
}

// ListForUser returns the user's attendance records for the given month,
// oldest first.
func (s *AttendanceService) ListForUser(ctx context.Context, userID string, month time.Time) ([]models.AttendanceRecord, error) {
	ctx = ensureContext(ctx)

	from, to := monthRange(month)

	var records []models.AttendanceRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date < ?", userID, from, to).
		Order("work_date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("attendance service: list records: %w", err)
	}
	return records, nil
}

// ListForCompany returns a month of attendance records for every user in the
// company, newest first.
func (s *AttendanceService) ListForCompany(ctx context.Context, companyID string, month time.Time) ([]models.AttendanceRecord, error) {
	ctx = ensureContext(ctx)

	from, to := monthRange(month)

	var records []models.AttendanceRecord
	if err := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = attendance_records.user_id").
		Where("users.company_id = ? AND work_date >= ? AND work_date < ?", companyID, from, to).
		Order("work_date DESC").
		Preload("User").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("attendance service: list company records: %w", err)
	}
	return records, nil
}

// monthRange returns the half-open [first day, first day of next month)
// interval containing the given time.
func monthRange(month time.Time) (time.Time, time.Time) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	return from, from.AddDate(0, 1, 0)
}
