package postgres

import (
	"context"
	"fmt"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
)

type emailLogRepository struct {
	BaseRepository
}

func NewEmailLogRepository(base BaseRepository) repository.EmailLogRepository {
	return &emailLogRepository{base}
}

func (r *emailLogRepository) Create(ctx context.Context, log *model.EmailLog) error {
	query := `
		INSERT INTO email_logs (
			id, email_type, recipient, subject, html, text,
			provider_id, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	err := r.GetDB().QueryRowxContext(ctx, query,
		log.ID, log.Type, log.Recipient, log.Subject, log.HTML, log.Text,
		log.ProviderID, log.Status, log.ErrorMessage,
	).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}

	return nil
}
