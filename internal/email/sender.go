package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/traveldesk/traveldesk/internal/application/port"
)

// Config holds SMTP configuration
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
	FromAddr   string
}

// Sender delivers notification emails over SMTP and implements port.Mailer
type Sender struct {
	cfg    Config
	dial   func(m ...*gomail.Message) error
	logger *zap.Logger
}

// NewSender creates a new SMTP sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Sender{
		cfg:    cfg,
		dial:   dialer.DialAndSend,
		logger: logger,
	}
}

// Send delivers one message. The context deadline is not honoured by the
// underlying dialer; callers run Send on the async notification path.
func (s *Sender) Send(_ context.Context, msg port.MailMessage) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddr, s.cfg.SenderName)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dial(m); err != nil {
		s.logger.Error("Failed to send email",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	s.logger.Info("Email sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

var _ port.Mailer = (*Sender)(nil)
