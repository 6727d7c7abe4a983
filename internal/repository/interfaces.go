package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mshekhar/portfolio-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ListMessagesFilter narrows a message listing.
type ListMessagesFilter struct {
	Status model.MessageStatus
	Limit  int
	Offset int
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	Get(ctx context.Context, id uuid.UUID) (*model.ContactMessage, error)
	List(ctx context.Context, filter ListMessagesFilter) ([]*model.ContactMessage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.MessageStatus) error
	// MarkReplied sets reply_content, reply_sent_at, is_replied and
	// status=replied in one statement, keeping the reply invariant.
	MarkReplied(ctx context.Context, id uuid.UUID, replyContent string, repliedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TemplateRepository interface {
	GetActiveByType(ctx context.Context, templateType model.TemplateType) (*model.EmailTemplate, error)
}

type EmailLogRepository interface {
	Create(ctx context.Context, log *model.EmailLog) error
}

type NotificationRepository interface {
	Create(ctx context.Context, record *model.NotificationRecord) error
}

type AnalyticsRepository interface {
	// Upsert inserts or overwrites the analytics row for the message
	// (last-write-wins on repeated replies).
	Upsert(ctx context.Context, analytics *model.MessageAnalytics) error
}
