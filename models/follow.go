package models

import (
	"time"
)

// Follow request statuses. A request is outstanding while pending or
// accepted; rejected is terminal and does not block a later request.
const (
	FollowPending  = "pending"
	FollowAccepted = "accepted"
	FollowRejected = "rejected"
)

type FollowRequest struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	FollowerID uint      `gorm:"not null;index" json:"follower_id"`
	TargetID   uint      `gorm:"not null;index" json:"target_id"`
	Status     string    `gorm:"not null;default:'pending'" json:"status"`

	Follower User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Target   User `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}
