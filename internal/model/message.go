package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageStatusUnread   MessageStatus = "unread"
	MessageStatusRead     MessageStatus = "read"
	MessageStatusReplied  MessageStatus = "replied"
	MessageStatusArchived MessageStatus = "archived"
	MessageStatusSpam     MessageStatus = "spam"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusUnread, MessageStatusRead, MessageStatusReplied,
		MessageStatusArchived, MessageStatusSpam:
		return true
	}
	return false
}

type MessagePriority string

const (
	MessagePriorityLow    MessagePriority = "low"
	MessagePriorityMedium MessagePriority = "medium"
	MessagePriorityHigh   MessagePriority = "high"
)

// ContactMessage is a contact-form submission. IsReplied is true iff
// ReplyContent and ReplySentAt are both set; MarkReplied on the
// repository is the only mutation path that touches the three fields.
type ContactMessage struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Email        string          `db:"email" json:"email"`
	Subject      string          `db:"subject" json:"subject"`
	Message      string          `db:"message" json:"message"`
	Status       MessageStatus   `db:"status" json:"status"`
	Priority     MessagePriority `db:"priority" json:"priority"`
	Category     string          `db:"category" json:"category"`
	IsReplied    bool            `db:"is_replied" json:"is_replied"`
	ReplyContent string          `db:"reply_content" json:"reply_content,omitempty"`
	ReplySentAt  *time.Time      `db:"reply_sent_at" json:"reply_sent_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
