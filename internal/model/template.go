package model

import (
	"time"

	"github.com/google/uuid"
)

// TemplateType selects which stored template and variable set apply.
type TemplateType string

const (
	TemplateTypeNotification TemplateType = "notification"
	TemplateTypeReply        TemplateType = "reply"
	TemplateTypeAutoReply    TemplateType = "auto_reply"
)

// EmailTemplate is an admin-managed template. Lookups are always by
// (type, is_active); editing happens outside this service.
type EmailTemplate struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	Type      TemplateType `db:"template_type" json:"template_type"`
	Subject   string       `db:"subject" json:"subject"`
	HTML      string       `db:"html" json:"html"`
	Text      string       `db:"text" json:"text"`
	IsActive  bool         `db:"is_active" json:"is_active"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}
