package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/auth"
	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/pkg/crypto"
	"github.com/SugiKent/attendance-system/pkg/mail"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.AttendanceRecord{},
		&models.LeaveRequest{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func newTestJWT(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)
	return svc
}

// captureMailer records outbound messages and optionally fails deliveries.
type captureMailer struct {
	messages []mail.Message
	fail     bool
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	if m.fail {
		return errors.New("delivery refused")
	}
	m.messages = append(m.messages, msg)
	return nil
}

func newTestSender(t *testing.T, mailer mail.Mailer) *VerificationSender {
	t.Helper()

	sender, err := NewVerificationSender(mailer, "https://app.example.com", "Attendance System")
	require.NoError(t, err)
	return sender
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, role models.Role, companyID *string, verified bool) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:           email,
		Password:        hashed,
		Name:            "Test User",
		Role:            role,
		CompanyID:       companyID,
		IsEmailVerified: verified,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	t.Helper()

	company := &models.Company{Name: name}
	require.NoError(t, db.Create(company).Error)
	return company
}

func claimsFor(user *models.User) *auth.Claims {
	return &auth.Claims{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
