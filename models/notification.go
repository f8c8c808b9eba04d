package models

import (
	"time"
)

// Notification kinds. These double as the websocket frame type.
const (
	NotificationVerificationDecided = "verification_decided"
	NotificationFollowRequested     = "follow_request_created"
	NotificationFollowAccepted      = "follow_request_accepted"
	NotificationFollowRejected      = "follow_request_rejected"
)

type Notification struct {
	ID          uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time              `gorm:"index" json:"created_at"`
	Kind        string                 `gorm:"size:40;not null;index" json:"kind"`
	RecipientID uint                   `gorm:"not null;index" json:"recipient_id"`
	ActorID     uint                   `gorm:"index" json:"actor_id,omitempty"`
	Payload     map[string]interface{} `gorm:"serializer:json" json:"payload"`
	IsRead      bool                   `gorm:"default:false;index" json:"is_read"`
	ReadAt      *time.Time             `json:"read_at,omitempty"`
	DeliveredAt *time.Time             `json:"delivered_at,omitempty"`
}
