package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mshekhar/portfolio-api/internal/model"
	"github.com/mshekhar/portfolio-api/internal/repository"
)

type messageRepository struct {
	BaseRepository
}

func NewMessageRepository(base BaseRepository) repository.MessageRepository {
	return &messageRepository{base}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (
			id, name, email, subject, message, status, priority,
			category, is_replied, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.GetDB().QueryRowxContext(ctx, query,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message,
		msg.Status, msg.Priority, msg.Category,
	).Scan(&msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *messageRepository) Get(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, status, priority,
		       category, is_replied, COALESCE(reply_content, '') AS reply_content,
		       reply_sent_at, created_at, updated_at
		FROM contact_messages
		WHERE id = $1
	`

	var msg model.ContactMessage
	if err := r.GetDB().GetContext(ctx, &msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return &msg, nil
}

func (r *messageRepository) List(ctx context.Context, filter repository.ListMessagesFilter) ([]*model.ContactMessage, error) {
	query := `
		SELECT id, name, email, subject, message, status, priority,
		       category, is_replied, COALESCE(reply_content, '') AS reply_content,
		       reply_sent_at, created_at, updated_at
		FROM contact_messages
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var messages []*model.ContactMessage
	if err := r.GetDB().SelectContext(ctx, &messages, query, string(filter.Status), limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MessageStatus) error {
	query := `
		UPDATE contact_messages
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.GetDB().ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update message status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *messageRepository) MarkReplied(ctx context.Context, id uuid.UUID, replyContent string, repliedAt time.Time) error {
	query := `
		UPDATE contact_messages
		SET reply_content = $2,
		    reply_sent_at = $3,
		    is_replied = true,
		    status = 'replied',
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.GetDB().ExecContext(ctx, query, id, replyContent, repliedAt)
	if err != nil {
		return fmt.Errorf("failed to mark message replied: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
