package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SugiKent/attendance-system/internal/models"
	apperrors "github.com/SugiKent/attendance-system/pkg/errors"
)

func newTestAuthService(t *testing.T, db *gorm.DB, mailer *captureMailer, opts ...AuthOption) *AuthService {
	t.Helper()

	svc, err := NewAuthService(db, newTestJWT(t), newTestSender(t, mailer), opts...)
	require.NoError(t, err)
	return svc
}

func TestRegisterCreatesUnverifiedUserAndSendsEmail(t *testing.T) {
	db := openTestDB(t)
	mailer := &captureMailer{}
	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(t, db, mailer, WithAuthClock(fixedClock(current)))

	user, err := svc.Register(context.Background(), nil, RegisterInput{
		Email:    "Alice@Example.com",
		Password: "Sup3r!Secret",
		Name:     "Alice",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, models.RoleEmployee, user.Role)
	require.Nil(t, user.CompanyID)
	require.False(t, user.IsEmailVerified)
	require.NotNil(t, user.VerificationToken)
	require.NotNil(t, user.VerificationTokenExpiry)
	require.Equal(t, current.Add(24*time.Hour), user.VerificationTokenExpiry.UTC())

	require.Len(t, mailer.messages, 1)
	msg := mailer.messages[0]
	require.Equal(t, []string{"alice@example.com"}, msg.To)
	require.True(t, msg.HTML)
	require.Contains(t, msg.Body, *user.VerificationToken)
	require.Contains(t, msg.Body, "userId="+user.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	_, err := svc.Register(context.Background(), nil, RegisterInput{
		Email: "dup@example.com", Password: "Sup3r!Secret", Name: "First",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), nil, RegisterInput{
		Email: "DUP@example.com", Password: "Sup3r!Secret", Name: "Second",
	})
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestRegisterMailFailureDoesNotFailRegistration(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{fail: true})

	user, err := svc.Register(context.Background(), nil, RegisterInput{
		Email: "quiet@example.com", Password: "Sup3r!Secret", Name: "Quiet",
	})
	require.NoError(t, err)
	require.NotNil(t, user.VerificationToken)
}

func TestRegisterCompanyAssignmentByActor(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	companyA := seedCompany(t, db, "Acme")
	companyB := seedCompany(t, db, "Globex")

	admin := seedUser(t, db, "admin@acme.com", "Sup3r!Secret", models.RoleAdmin, &companyA.ID, true)
	super := seedUser(t, db, "root@example.com", "Sup3r!Secret", models.RoleSuperAdmin, nil, true)

	// ADMIN callers always place new users in their own company.
	user, err := svc.Register(context.Background(), claimsFor(admin), RegisterInput{
		Email: "emp1@acme.com", Password: "Sup3r!Secret", Name: "One",
		CompanyID: &companyB.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, user.CompanyID)
	require.Equal(t, companyA.ID, *user.CompanyID)

	// SUPER_ADMIN may target any company.
	user, err = svc.Register(context.Background(), claimsFor(super), RegisterInput{
		Email: "emp2@globex.com", Password: "Sup3r!Secret", Name: "Two",
		CompanyID: &companyB.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, user.CompanyID)
	require.Equal(t, companyB.ID, *user.CompanyID)

	// Anonymous registration never lands in a company.
	user, err = svc.Register(context.Background(), nil, RegisterInput{
		Email: "solo@example.com", Password: "Sup3r!Secret", Name: "Solo",
		CompanyID: &companyA.ID,
	})
	require.NoError(t, err)
	require.Nil(t, user.CompanyID)
}

func TestSetupAdminIsOneShot(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	user, token, err := svc.SetupAdmin(context.Background(), SetupAdminInput{
		Email: "boss@example.com", Password: "Sup3r!Secret", Name: "Boss",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.True(t, user.IsEmailVerified)
	require.NotEmpty(t, token)

	_, _, err = svc.SetupAdmin(context.Background(), SetupAdminInput{
		Email: "boss2@example.com", Password: "Sup3r!Secret", Name: "Boss Two",
	})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	seedUser(t, db, "known@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	_, _, unknownErr := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, unknownErr, apperrors.ErrInvalidCredentials)

	_, _, badPassErr := svc.Login(context.Background(), "known@example.com", "wrong")
	require.ErrorIs(t, badPassErr, apperrors.ErrInvalidCredentials)

	// Identical error for unknown email and wrong password.
	require.Equal(t, unknownErr.Error(), badPassErr.Error())
}

func TestLoginSuccessAndUnverified(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})
	jwtSvc := newTestJWT(t)

	company := seedCompany(t, db, "Acme")
	verified := seedUser(t, db, "ok@example.com", "Sup3r!Secret", models.RoleEmployee, &company.ID, true)
	seedUser(t, db, "pending@example.com", "Sup3r!Secret", models.RoleEmployee, nil, false)

	user, token, err := svc.Login(context.Background(), "OK@example.com", "Sup3r!Secret")
	require.NoError(t, err)
	require.Equal(t, verified.ID, user.ID)

	claims, err := jwtSvc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, verified.ID, claims.UserID)
	require.Equal(t, models.RoleEmployee, claims.Role)
	require.NotNil(t, claims.CompanyID)
	require.Equal(t, company.ID, *claims.CompanyID)

	_, _, err = svc.Login(context.Background(), "pending@example.com", "Sup3r!Secret")
	require.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
}

func TestVerifyEmailLifecycle(t *testing.T) {
	db := openTestDB(t)
	mailer := &captureMailer{}
	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestAuthService(t, db, mailer, WithAuthClock(fixedClock(current)))

	user, err := svc.Register(context.Background(), nil, RegisterInput{
		Email: "verify@example.com", Password: "Sup3r!Secret", Name: "Verify",
	})
	require.NoError(t, err)
	token := *user.VerificationToken

	// Wrong token leaves the account untouched.
	_, _, err = svc.VerifyEmail(context.Background(), user.ID, "not-the-token")
	require.ErrorIs(t, err, apperrors.ErrInvalidVerificationToken)

	verified, session, err := svc.VerifyEmail(context.Background(), user.ID, token)
	require.NoError(t, err)
	require.True(t, verified.IsEmailVerified)
	require.Nil(t, verified.VerificationToken)
	require.Nil(t, verified.VerificationTokenExpiry)
	require.NotEmpty(t, session)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.True(t, stored.IsEmailVerified)
	require.Nil(t, stored.VerificationToken)
	require.Nil(t, stored.VerificationTokenExpiry)

	// The token is single use.
	_, _, err = svc.VerifyEmail(context.Background(), user.ID, token)
	require.ErrorIs(t, err, apperrors.ErrAlreadyVerified)

	// Unknown user id is reported as missing, not as a bad token.
	_, _, err = svc.VerifyEmail(context.Background(), "00000000-0000-0000-0000-000000000000", token)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	db := openTestDB(t)
	current := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := &current
	svc := newTestAuthService(t, db, &captureMailer{},
		WithAuthClock(func() time.Time { return *clock }))

	user, err := svc.Register(context.Background(), nil, RegisterInput{
		Email: "late@example.com", Password: "Sup3r!Secret", Name: "Late",
	})
	require.NoError(t, err)

	current = current.Add(25 * time.Hour)

	_, _, err = svc.VerifyEmail(context.Background(), user.ID, *user.VerificationToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidVerificationToken)
}

func TestResendVerificationSupersedesToken(t *testing.T) {
	db := openTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)

	user, err := svc.Register(context.Background(), nil, RegisterInput{
		Email: "again@example.com", Password: "Sup3r!Secret", Name: "Again",
	})
	require.NoError(t, err)
	oldToken := *user.VerificationToken

	require.NoError(t, svc.ResendVerification(context.Background(), "again@example.com"))
	require.Len(t, mailer.messages, 2)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.NotNil(t, stored.VerificationToken)
	require.NotEqual(t, oldToken, *stored.VerificationToken)

	// The superseded token no longer verifies.
	_, _, err = svc.VerifyEmail(context.Background(), user.ID, oldToken)
	require.ErrorIs(t, err, apperrors.ErrInvalidVerificationToken)

	// The fresh one does.
	_, _, err = svc.VerifyEmail(context.Background(), user.ID, *stored.VerificationToken)
	require.NoError(t, err)
}

func TestResendVerificationUnknownEmailIsSilent(t *testing.T) {
	db := openTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)

	require.NoError(t, svc.ResendVerification(context.Background(), "nobody@example.com"))
	require.Empty(t, mailer.messages)
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	seedUser(t, db, "done@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	err := svc.ResendVerification(context.Background(), "done@example.com")
	require.ErrorIs(t, err, apperrors.ErrAlreadyVerified)
}

func TestResendVerificationMailFailurePropagates(t *testing.T) {
	db := openTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer)

	_, err := svc.Register(context.Background(), nil, RegisterInput{
		Email: "flaky@example.com", Password: "Sup3r!Secret", Name: "Flaky",
	})
	require.NoError(t, err)

	mailer.fail = true
	err = svc.ResendVerification(context.Background(), "flaky@example.com")
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrInternalServer.Code, appErr.Code)
}

func TestUpdateProfile(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	user := seedUser(t, db, "old@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)
	seedUser(t, db, "taken@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	name := "New Name"
	email := "NEW@example.com"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Name:  &name,
		Email: &email,
	})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, "new@example.com", updated.Email)

	takenEmail := "taken@example.com"
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Email: &takenEmail})
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)

	// Re-submitting your own email is not a conflict.
	own := "new@example.com"
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Email: &own})
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	user := seedUser(t, db, "pw@example.com", "Sup3r!Secret", models.RoleEmployee, nil, true)

	err := svc.ChangePassword(context.Background(), user.ID, "wrong-current", "N3w!Password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "Sup3r!Secret", "N3w!Password"))

	_, _, err = svc.Login(context.Background(), "pw@example.com", "Sup3r!Secret")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "pw@example.com", "N3w!Password")
	require.NoError(t, err)
}

func TestCurrentUser(t *testing.T) {
	db := openTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{})

	company := seedCompany(t, db, "Acme")
	user := seedUser(t, db, "me@example.com", "Sup3r!Secret", models.RoleEmployee, &company.ID, true)

	loaded, err := svc.CurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, loaded.ID)
	require.NotNil(t, loaded.Company)
	require.Equal(t, "Acme", loaded.Company.Name)

	_, err = svc.CurrentUser(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestVerificationSenderLink(t *testing.T) {
	sender := newTestSender(t, &captureMailer{})

	link := sender.Link("user-1", "tok en")
	require.True(t, strings.HasPrefix(link, "https://app.example.com/verify-email?"))
	require.Contains(t, link, "token=tok+en")
	require.Contains(t, link, "userId=user-1")
}
