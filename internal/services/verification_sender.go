package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/SugiKent/attendance-system/internal/models"
	"github.com/SugiKent/attendance-system/pkg/mail"
)

// verificationTemplate renders the verification email body. Kept plain so it
// survives every mail client; the link is also readable from the log transport.
var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933;">
  {{if .CompanyLogo}}<img src="{{.CompanyLogo}}" alt="{{.CompanyName}}" height="40">{{end}}
  <h2>Welcome to {{.CompanyName}}</h2>
  <p>Hi {{.UserName}},</p>
  <p>Please confirm your email address by clicking the button below. The link is valid for 24 hours.</p>
  <p><a href="{{.VerificationLink}}" style="background: #2563eb; color: #fff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">Verify email</a></p>
  <p>If the button does not work, copy this address into your browser:<br>{{.VerificationLink}}</p>
  <p>If you did not create an account, you can ignore this message.</p>
  <p style="color: #7b8794; font-size: 12px;">&copy; {{.CurrentYear}} {{.CompanyName}}</p>
</body>
</html>`))

type verificationTemplateData struct {
	UserName         string
	VerificationLink string
	CompanyName      string
	CompanyLogo      string
	CurrentYear      int
}

// SenderOption customises the VerificationSender.
type SenderOption func(*VerificationSender)

// WithSenderClock injects a custom time source, primarily for testing.
func WithSenderClock(clock func() time.Time) SenderOption {
	return func(s *VerificationSender) {
		if clock != nil {
			s.now = clock
		}
	}
}

// VerificationSender builds and dispatches account verification emails
// through whichever mail transport the application was started with.
type VerificationSender struct {
	mailer  mail.Mailer
	baseURL string
	appName string
	now     func() time.Time
}

// NewVerificationSender constructs a sender. baseURL is the public frontend
// origin the verification link points at; appName is the fallback brand used
// when the recipient has no company.
func NewVerificationSender(mailer mail.Mailer, baseURL, appName string, opts ...SenderOption) (*VerificationSender, error) {
	if mailer == nil {
		return nil, errors.New("verification sender: mailer is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("verification sender: base url is required")
	}
	if strings.TrimSpace(appName) == "" {
		appName = "Attendance System"
	}

	sender := &VerificationSender{
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		appName: appName,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(sender)
	}

	return sender, nil
}

// Link returns the verification URL for the given user and token.
func (s *VerificationSender) Link(userID, token string) string {
	query := url.Values{}
	query.Set("token", token)
	query.Set("userId", userID)
	return fmt.Sprintf("%s/verify-email?%s", s.baseURL, query.Encode())
}

// Send renders the verification email for the user and delivers it.
func (s *VerificationSender) Send(ctx context.Context, user *models.User, token string) error {
	if user == nil {
		return errors.New("verification sender: user is required")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("verification sender: token is required")
	}

	companyName := s.appName
	companyLogo := ""
	if user.Company != nil {
		if name := strings.TrimSpace(user.Company.Name); name != "" {
			companyName = name
		}
		companyLogo = strings.TrimSpace(user.Company.LogoURL)
	}

	data := verificationTemplateData{
		UserName:         user.Name,
		VerificationLink: s.Link(user.ID, token),
		CompanyName:      companyName,
		CompanyLogo:      companyLogo,
		CurrentYear:      s.now().Year(),
	}

	var body strings.Builder
	if err := verificationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("verification sender: render template: %w", err)
	}

	message := mail.Message{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Verify your %s account", companyName),
		Body:    body.String(),
		HTML:    true,
	}

	if err := s.mailer.Send(ctx, message); err != nil {
		return fmt.Errorf("verification sender: send email: %w", err)
	}

	return nil
}
