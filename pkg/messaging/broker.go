package messaging

import (
	"context"
)

// Broker publishes delivery events for downstream consumers. Publishing
// is best-effort from the orchestrator's point of view: a broker failure
// never fails a delivery.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Close() error
}

// DeliveryEvent is published after every delivery attempt, success or not.
type DeliveryEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	EmailID   string `json:"email_id,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}
