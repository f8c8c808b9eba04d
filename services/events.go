package services

import (
	"time"
)

// Event is a completed domain state transition, consumed asynchronously
// by the Dispatcher. The engines never talk to delivery mechanics.
type Event interface {
	EventName() string
}

type VerificationDecided struct {
	AccountID  uint
	Decision   string // models.StatusApproved or models.StatusRejected
	ReviewerID uint
	Timestamp  time.Time
}

func (VerificationDecided) EventName() string { return "verification.decided" }

type FollowRequested struct {
	RequestID  uint
	FollowerID uint
	TargetID   uint
	Timestamp  time.Time
}

func (FollowRequested) EventName() string { return "follow.requested" }

type FollowResponded struct {
	RequestID  uint
	FollowerID uint
	TargetID   uint
	Decision   string // models.FollowAccepted or models.FollowRejected
	Timestamp  time.Time
}

func (FollowResponded) EventName() string { return "follow.responded" }

// EventBus is the in-process queue between the engines and the Dispatcher.
// Publish blocks when the buffer is full rather than dropping: once a
// state change is committed its event must reach the Dispatcher.
type EventBus struct {
	ch chan Event
}

func NewEventBus(size int) *EventBus {
	if size <= 0 {
		size = 64
	}
	return &EventBus{ch: make(chan Event, size)}
}

func (b *EventBus) Publish(e Event) {
	b.ch <- e
}

func (b *EventBus) Events() <-chan Event {
	return b.ch
}

// Close stops the bus. Only the owner of all publishers may call it.
func (b *EventBus) Close() {
	close(b.ch)
}
