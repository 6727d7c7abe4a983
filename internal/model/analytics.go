package model

import (
	"time"

	"github.com/google/uuid"
)

// MessageAnalytics holds response-time figures for a replied message.
// One row per message_id; repeated replies overwrite it (last-write-wins).
type MessageAnalytics struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	MessageID           uuid.UUID `db:"message_id" json:"message_id"`
	ResponseTimeHours   float64   `db:"response_time_hours" json:"response_time_hours"`
	ResponseTimeMinutes float64   `db:"response_time_minutes" json:"response_time_minutes"`
	RepliedAt           time.Time `db:"replied_at" json:"replied_at"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
