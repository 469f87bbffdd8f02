package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/noah-isme/sma-research-portal/pkg/config"
)

// ErrSMTPNotConfigured is returned when no SMTP host is set.
var ErrSMTPNotConfigured = errors.New("smtp is not configured")

// Message is a rendered plain-text e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Backend delivers messages.
type Backend interface {
	Send(msg Message) error
}

// Dialer is the subset of gomail.Dialer the SMTP backend needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPBackend sends mail immediately through an SMTP relay.
type SMTPBackend struct {
	Dialer Dialer
	From   string
}

// NewSMTPBackend builds an SMTP backend from configuration.
func NewSMTPBackend(cfg config.MailConfig) (*SMTPBackend, error) {
	if cfg.Host == "" {
		return nil, ErrSMTPNotConfigured
	}
	return &SMTPBackend{
		Dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		From:   cfg.From,
	}, nil
}

// Send implements Backend.
func (b *SMTPBackend) Send(msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", b.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	if err := b.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("dial and send: %w", err)
	}
	return nil
}

// LogBackend writes messages to the logger instead of sending them.
type LogBackend struct {
	Logger *zap.Logger
}

// Send implements Backend.
func (b *LogBackend) Send(msg Message) error {
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("email not sent (log backend)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// New picks the SMTP backend when configured and the log backend otherwise.
func New(cfg config.MailConfig, logger *zap.Logger) Backend {
	backend, err := NewSMTPBackend(cfg)
	if err != nil {
		return &LogBackend{Logger: logger}
	}
	return backend
}

var passwordResetTemplate = template.Must(template.New("reset").Parse(`Hello {{.Name}},

We received a request to reset the password of your research portal account.
Use the link below within {{.TTL}} to choose a new password:

{{.Link}}

If you did not ask for this, you can ignore this message.
`))

// PasswordReset renders the reset e-mail.
func PasswordReset(to, name, link, ttl string) (Message, error) {
	buf := &bytes.Buffer{}
	if err := passwordResetTemplate.Execute(buf, map[string]string{"Name": name, "Link": link, "TTL": ttl}); err != nil {
		return Message{}, fmt.Errorf("render reset email: %w", err)
	}
	return Message{To: to, Subject: "Reset your research portal password", Body: buf.String()}, nil
}
