package dto

import (
	"time"

	"github.com/google/uuid"
)

// NotificationPayload is the real-time message pushed to connected
// clients when something happens on a review they are involved in.
// Notifications are ephemeral; the review timeline is the durable record.
type NotificationPayload struct {
	Id        uuid.UUID              `json:"id"`
	TypeCode  string                 `json:"type_code"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
