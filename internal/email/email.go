package email

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig = errors.New("invalid email provider config")
	ErrSendFailed    = errors.New("failed to send email")
)

// Email is one outbound message.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Provider sends a single email and returns the provider's message ID.
// Implementations must honor ctx for timeouts where the underlying
// transport allows it.
type Provider interface {
	Send(ctx context.Context, email Email) (string, error)
}

// Config selects and configures the provider. Exactly one provider is
// active per process; there is no failover between them.
type Config struct {
	Provider string // "postmark" or "smtp"

	PostmarkServerToken  string
	PostmarkAccountToken string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

// NewProvider creates the configured provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "postmark":
		return NewPostmarkProvider(cfg)
	case "smtp":
		return NewSMTPProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
