package model

import "time"

// SubmitMessageRequest is the public contact-form payload.
type SubmitMessageRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"required,email,max=255"`
	Subject string `json:"subject" binding:"required,max=255"`
	Message string `json:"message" binding:"required,min=10"`
}

// NotifyRequest triggers an admin notification for a message.
type NotifyRequest struct {
	AdminEmail string `json:"admin_email" binding:"omitempty,email"`
}

// ReplyRequest triggers a manual admin reply to a message.
type ReplyRequest struct {
	ReplyContent string `json:"reply_content" binding:"required,min=10"`
	AdminName    string `json:"admin_name" binding:"omitempty,max=255"`
}

// UpdateStatusRequest changes a message's status from the admin console.
type UpdateStatusRequest struct {
	Status MessageStatus `json:"status" binding:"required"`
}

// DeliveryResult is returned for a completed delivery.
type DeliveryResult struct {
	EmailID  string        `json:"email_id"`
	Duration time.Duration `json:"-"`
	// ResponseTimeHours is set for reply deliveries only
	ResponseTimeHours *float64 `json:"response_time_hours,omitempty"`
}

// DurationMS is the wire form of Duration.
func (r *DeliveryResult) DurationMS() int64 {
	return r.Duration.Milliseconds()
}
