package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
)

func TestClockInOnceADay(t *testing.T) {
	db := openTestDB(t)
	current := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	clock := &current

	svc, err := NewAttendanceService(db, WithAttendanceClock(func() time.Time { return *clock }))
	require.NoError(t, err)

	user := seedUser(t, db, "worker@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	record, err := svc.ClockIn(context.Background(), user.ID, "on site")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC), record.WorkDate.UTC())
	require.Nil(t, record.ClockOut)

	_, err = svc.ClockIn(context.Background(), user.ID, "")
	appErr := apperrors.FromError(err)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)

	// A new day opens a new record.
	current = current.Add(24 * time.Hour)
	_, err = svc.ClockIn(context.Background(), user.ID, "")
	require.NoError(t, err)
}

func TestClockOutRequiresClockIn(t *testing.T) {
	db := openTestDB(t)
	current := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	clock := &current

	svc, err := NewAttendanceService(db, WithAttendanceClock(func() time.Time { return *clock }))
	require.NoError(t, err)

	user := seedUser(t, db, "worker@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	_, err = svc.ClockOut(context.Background(), user.ID, "")
	require.Error(t, err)

	_, err = svc.ClockIn(context.Background(), user.ID, "")
	require.NoError(t, err)

	current = current.Add(8 * time.Hour)
	record, err := svc.ClockOut(context.Background(), user.ID, "done")
	require.NoError(t, err)
	require.NotNil(t, record.ClockOut)
	require.Equal(t, "done", record.Note)

	_, err = svc.ClockOut(context.Background(), user.ID, "")
	require.Error(t, err)
}

func TestListForUserFiltersByMonth(t *testing.T) {
	db := openTestDB(t)
	current := time.Date(2025, 4, 28, 9, 0, 0, 0, time.UTC)
	clock := &current

	svc, err := NewAttendanceService(db, WithAttendanceClock(func() time.Time { return *clock }))
	require.NoError(t, err)

	user := seedUser(t, db, "worker@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	for i := 0; i < 5; i++ {
		_, err = svc.ClockIn(context.Background(), user.ID, "")
		require.NoError(t, err)
		current = current.Add(24 * time.Hour)
	}

	april, err := svc.ListForUser(context.Background(), user.ID, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, april, 3)

	may, err := svc.ListForUser(context.Background(), user.ID, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, may, 2)
}

func TestListForCompanyScopesByCompany(t *testing.T) {
	db := openTestDB(t)
	current := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)

	svc, err := NewAttendanceService(db, WithAttendanceClock(fixedClock(current)))
	require.NoError(t, err)

	company := seedCompany(t, db, "Acme")
	other := seedCompany(t, db, "Globex")

	insider := seedUser(t, db, "in@acme.com", "Sup3r!Secret", models.RoleEmployee, &company.ID, true)
	outsider := seedUser(t, db, "out@globex.com", "Sup3r!Secret", models.RoleEmployee, &other.ID, true)

	_, err = svc.ClockIn(context.Background(), insider.ID, "")
	require.NoError(t, err)
	_, err = svc.ClockIn(context.Background(), outsider.ID, "")
	require.NoError(t, err)

	records, err := svc.ListForCompany(context.Background(), company.ID, current)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, insider.ID, records[0].UserID)
	require.NotNil(t, records[0].User)
}
