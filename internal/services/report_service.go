package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
)

// MonthlyReport summarises one user's month: days with an attendance record,
// minutes between completed clock-in/out pairs, and approved leave days
// falling inside the month.
type MonthlyReport struct {
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	Month         string `json:"month"`
	DaysPresent   int    `json:"days_present"`
	WorkedMinutes int64  `json:"worked_minutes"`
	LeaveDays     int    `json:"leave_days"`
}

// ReportService aggregates attendance and leave data into monthly summaries.
type ReportService struct {
	db *gorm.DB
}

// NewReportService constructs a ReportService instance.
func NewReportService(db *gorm.DB) (*ReportService, error) {
	if db == nil {
		return nil, errors.New("report service: db is required")
	}
	return &ReportService{db: db}, nil
}

// MonthlyForUser builds the report for a single user.
func (s *ReportService) MonthlyForUser(ctx context.Context, userID string, month time.Time) (*MonthlyReport, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report service: get user: %w", err)
	}

	return s.buildReport(ctx, &user, month)
}

// MonthlyForCompany builds reports for every user in the company.
func (s *ReportService) MonthlyForCompany(ctx context.Context, companyID string, month time.Time) ([]MonthlyReport, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("report service: list users: %w", err)
	}

	reports := make([]MonthlyReport, 0, len(users))
	for i := range users {
		report, err := s.buildReport(ctx, &users[i], month)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

func (s *ReportService) buildReport(ctx context.Context, user *models.User, month time.Time) (*MonthlyReport, error) {
	from, to := monthRange(month)

	var records []models.AttendanceRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date < ?", user.ID, from, to).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("report service: list attendance: %w", err)
	}

	var worked time.Duration
	for _, record := range records {
		if record.ClockOut != nil {
			worked += record.ClockOut.Sub(record.ClockIn)
		}
	}

	var leaves []models.LeaveRequest
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND start_date < ? AND end_date >= ?",
			user.ID, models.LeaveApproved, to, from).
		Find(&leaves).Error; err != nil {
		return nil, fmt.Errorf("report service: list leave: %w", err)
	}

	leaveDays := 0
	for _, leave := range leaves {
		leaveDays += overlapDays(leave.StartDate, leave.EndDate, from, to)
	}

	return &MonthlyReport{
		UserID:        user.ID,
		UserName:      user.Name,
		Month:         from.Format("2006-01"),
		DaysPresent:   len(records),
		WorkedMinutes: int64(worked / time.Minute),
		LeaveDays:     leaveDays,
	}, nil
}

// overlapDays counts calendar days of [start, end] that fall inside the
// half-open window [from, to).
func overlapDays(start, end, from, to time.Time) int {
	if start.Before(from) {
		start = from
	}
	if !end.Before(to) {
		end = to.AddDate(0, 0, -1)
	}
	if end.Before(start) {
		return 0
	}
	return int(dayOf(end).Sub(dayOf(start))/(24*time.Hour)) + 1
}
