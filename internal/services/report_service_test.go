package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SugiKent/attendance-system/internal/models"
)

func TestMonthlyForUser(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewReportService(db)
	require.NoError(t, err)

	user := seedUser(t, db, "worker@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	// Two full days worked, one still open.
	for day, hours := range map[int]int{2: 8, 3: 6} {
		clockIn := time.Date(2025, 6, day, 9, 0, 0, 0, time.UTC)
		clockOut := clockIn.Add(time.Duration(hours) * time.Hour)
		require.NoError(t, db.Create(&models.AttendanceRecord{
			UserID:   user.ID,
			WorkDate: dayOf(clockIn),
			ClockIn:  clockIn,
			ClockOut: &clockOut,
		}).Error)
	}
	open := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.AttendanceRecord{
		UserID:   user.ID,
		WorkDate: dayOf(open),
		ClockIn:  open,
	}).Error)

	// Approved leave straddling the month boundary: only June days count.
	require.NoError(t, db.Create(&models.LeaveRequest{
		UserID:    user.ID,
		Type:      models.LeavePaid,
		StartDate: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Status:    models.LeaveApproved,
	}).Error)

	// Pending leave is ignored.
	require.NoError(t, db.Create(&models.LeaveRequest{
		UserID:    user.ID,
		Type:      models.LeaveSick,
		StartDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Status:    models.LeavePending,
	}).Error)

	report, err := svc.MonthlyForUser(context.Background(), user.ID, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2025-06", report.Month)
	require.Equal(t, 3, report.DaysPresent)
	require.Equal(t, int64(14*60), report.WorkedMinutes)
	require.Equal(t, 2, report.LeaveDays)
}

func TestMonthlyForCompany(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewReportService(db)
	require.NoError(t, err)

	company := seedCompany(t, db, "Acme")
	first := seedUser(t, db, "a@acme.com", "Sup3r!Secret", models.RoleEmployee, &company.ID, true)
	seedUser(t, db, "b@acme.com", "Sup3r!Secret", models.RoleEmployee, &company.ID, true)
	seedUser(t, db, "c@other.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	clockIn := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.AttendanceRecord{
		UserID:   first.ID,
		WorkDate: dayOf(clockIn),
		ClockIn:  clockIn,
	}).Error)

	reports, err := svc.MonthlyForCompany(context.Background(), company.ID, clockIn)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byUser := map[string]MonthlyReport{}
	for _, r := range reports {
		byUser[r.UserID] = r
	}
	require.Equal(t, 1, byUser[first.ID].DaysPresent)
}
