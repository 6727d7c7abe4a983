package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

type smtpProvider struct {
	dialer *gomail.Dialer
}

// NewSMTPProvider creates a plain SMTP provider for deployments
// without a transactional email account.
func NewSMTPProvider(cfg Config) (Provider, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTPHost is required", ErrInvalidConfig)
	}
	if cfg.SMTPPort == 0 {
		return nil, fmt.Errorf("%w: SMTPPort is required", ErrInvalidConfig)
	}

	return &smtpProvider{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}, nil
}

// Send delivers via SMTP. gomail offers no mid-send cancellation, so
// ctx is only checked before dialing; SMTP also assigns no message ID,
// so one is generated for the audit trail.
func (p *smtpProvider) Send(ctx context.Context, email Email) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", email.From)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		m.AddAlternative("text/html", email.HTML)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}

	return uuid.New().String(), nil
}
