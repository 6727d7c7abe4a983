package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

type postmarkProvider struct {
	client *postmark.Client
}

// NewPostmarkProvider creates a Postmark-backed provider. Both tokens
// are required so a half-configured process fails at startup instead
// of at first send.
func NewPostmarkProvider(cfg Config) (Provider, error) {
	if cfg.PostmarkServerToken == "" {
		return nil, fmt.Errorf("%w: PostmarkServerToken is required", ErrInvalidConfig)
	}
	if cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: PostmarkAccountToken is required", ErrInvalidConfig)
	}

	return &postmarkProvider{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
	}, nil
}

func (p *postmarkProvider) Send(ctx context.Context, email Email) (string, error) {
	resp, err := p.client.SendEmail(ctx, postmark.Email{
		From:     email.From,
		To:       email.To,
		Subject:  email.Subject,
		HTMLBody: email.HTML,
		TextBody: email.Text,
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(
			ErrSendFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}

	return resp.MessageID, nil
}
