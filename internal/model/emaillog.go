package model

import (
	"time"

	"github.com/google/uuid"
)

type EmailLogStatus string

const (
	EmailLogStatusSent   EmailLogStatus = "sent"
	EmailLogStatusFailed EmailLogStatus = "failed"
)

// EmailLog is one immutable row per delivery attempt. Append-only;
// nothing updates or deletes these rows.
type EmailLog struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Type         TemplateType   `db:"email_type" json:"email_type"`
	Recipient    string         `db:"recipient" json:"recipient"`
	Subject      string         `db:"subject" json:"subject"`
	HTML         string         `db:"html" json:"html"`
	Text         string         `db:"text" json:"text"`
	ProviderID   string         `db:"provider_id" json:"provider_id,omitempty"`
	Status       EmailLogStatus `db:"status" json:"status"`
	ErrorMessage string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// NotificationRecord links a logical notification event to the email
// log row it produced.
type NotificationRecord struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	MessageID  uuid.UUID    `db:"message_id" json:"message_id"`
	EmailLogID uuid.UUID    `db:"email_log_id" json:"email_log_id"`
	Type       TemplateType `db:"notification_type" json:"notification_type"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}
