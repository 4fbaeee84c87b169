package mail

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// LogMailer writes outbound messages to the application log instead of
// delivering them. It is the development transport: registration flows can
// be exercised end to end without an SMTP server, with the verification
// link readable from the log output.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer constructs a mailer that records messages via the supplied logger.
func NewLogMailer(log *zap.Logger) *LogMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogMailer{log: log}
}

// Send logs the message and always succeeds.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("simulated email delivery",
		zap.String("to", strings.Join(msg.To, ", ")),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	)
	m.log.Debug("email body", zap.String("body", msg.Body))
	return nil
}
