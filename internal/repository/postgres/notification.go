package postgres

import (
	"context"
	"fmt"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) Create(ctx context.Context, record *model.NotificationRecord) error {
	query := `
		INSERT INTO notification_records (
			id, message_id, email_log_id, notification_type, created_at
		) VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	err := r.GetDB().QueryRowxContext(ctx, query,
		record.ID, record.MessageID, record.EmailLogID, record.Type,
	).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	return nil
}
