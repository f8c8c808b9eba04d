package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alum-connect/api-go/apperrors"
	"github.com/alum-connect/api-go/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pusher delivers a notification to a live realtime connection. A false
// return means the recipient is offline; that is not an error.
type Pusher interface {
	Push(accountID uint, n *models.Notification) bool
}

// Emailer sends a templated email. Fire-and-forget; failures are logged
// by the Dispatcher, never propagated.
type Emailer interface {
	Send(ctx context.Context, to, templateKind string, data map[string]interface{}) error
}

// Dispatcher converts domain events into persisted notifications,
// attempts best-effort realtime delivery, and mirrors events to email.
// The notification record is always written before any push attempt.
type Dispatcher struct {
	db     *gorm.DB
	bus    *EventBus
	pusher Pusher
	mailer Emailer
	log    *zap.Logger
}

func NewDispatcher(db *gorm.DB, bus *EventBus, pusher Pusher, mailer Emailer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, bus: bus, pusher: pusher, mailer: mailer, log: log}
}

// Run consumes the event bus until the context is cancelled or the bus is
// closed. Meant to run in its own goroutine.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-d.bus.Events():
			if !ok {
				return
			}
			if err := d.Dispatch(e); err != nil {
				d.log.Error("dispatch failed", zap.String("event", e.EventName()), zap.Error(err))
			}
		}
	}
}

// Dispatch resolves the event's single recipient, persists the
// notification, then tries realtime and email delivery.
func (d *Dispatcher) Dispatch(e Event) error {
	var n models.Notification
	var emailKind string

	switch ev := e.(type) {
	case VerificationDecided:
		n = models.Notification{
			Kind:        models.NotificationVerificationDecided,
			RecipientID: ev.AccountID,
			ActorID:     ev.ReviewerID,
			Payload: map[string]interface{}{
				"decision": ev.Decision,
			},
		}
		emailKind = "verification_" + ev.Decision
	case FollowRequested:
		n = models.Notification{
			Kind:        models.NotificationFollowRequested,
			RecipientID: ev.TargetID,
			ActorID:     ev.FollowerID,
			Payload: map[string]interface{}{
				"request_id":  ev.RequestID,
				"follower_id": ev.FollowerID,
			},
		}
		emailKind = "follow_request"
	case FollowResponded:
		kind := models.NotificationFollowAccepted
		if ev.Decision == models.FollowRejected {
			kind = models.NotificationFollowRejected
		}
		n = models.Notification{
			Kind:        kind,
			RecipientID: ev.FollowerID,
			ActorID:     ev.TargetID,
			Payload: map[string]interface{}{
				"request_id": ev.RequestID,
				"target_id":  ev.TargetID,
				"decision":   ev.Decision,
			},
		}
		emailKind = "follow_" + ev.Decision
	default:
		return fmt.Errorf("unknown event type %T", e)
	}

	if err := d.persist(&n); err != nil {
		return apperrors.OperationFailed(err)
	}

	d.deliver(&n)
	d.email(&n, emailKind)
	return nil
}

// ListUnread returns the account's unread notifications, newest first.
func (d *Dispatcher) ListUnread(accountID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := d.db.
		Where("recipient_id = ? AND is_read = ?", accountID, false).
		Order("created_at desc").
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications for the account.
func (d *Dispatcher) UnreadCount(accountID uint) (int64, error) {
	var count int64
	err := d.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", accountID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.OperationFailed(err)
	}
	return count, nil
}

// MarkRead marks a notification read. Only the recipient may do so.
func (d *Dispatcher) MarkRead(notificationID, accountID uint) error {
	var n models.Notification
	if err := d.db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("notification %d not found", notificationID)
		}
		return apperrors.OperationFailed(err)
	}

	if n.RecipientID != accountID {
		return apperrors.Authorization("notification belongs to another account")
	}
	if n.IsRead {
		return nil
	}

	now := time.Now()
	err := d.db.Model(&n).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": &now,
	}).Error
	if err != nil {
		return apperrors.OperationFailed(err)
	}
	return nil
}

// Reconcile backfills notifications for state changes whose event never
// reached the dispatcher, covering a crash between the commit and the
// publish: verification decisions for already-decided accounts, and
// creation notifications for pending follow edges. Run once at startup.
func (d *Dispatcher) Reconcile(ctx context.Context) error {
	if err := d.reconcileDecisions(ctx); err != nil {
		return err
	}
	return d.reconcileFollowRequests(ctx)
}

func (d *Dispatcher) reconcileDecisions(ctx context.Context) error {
	notified := d.db.Model(&models.Notification{}).
		Select("recipient_id").
		Where("kind = ?", models.NotificationVerificationDecided)

	var accounts []models.User
	err := d.db.WithContext(ctx).
		Where("status IN ?", []string{models.StatusApproved, models.StatusRejected}).
		Where("id NOT IN (?)", notified).
		Find(&accounts).Error
	if err != nil {
		return apperrors.OperationFailed(err)
	}

	for _, account := range accounts {
		d.log.Info("reconciling missed verification notification",
			zap.Uint("account_id", account.ID),
			zap.String("status", account.Status))
		if err := d.Dispatch(VerificationDecided{
			AccountID: account.ID,
			Decision:  account.Status,
			Timestamp: account.UpdatedAt,
		}); err != nil {
			d.log.Error("reconcile dispatch failed", zap.Uint("account_id", account.ID), zap.Error(err))
		}
	}
	return nil
}

// reconcileFollowRequests finds pending edges with no creation
// notification since the edge was created. Terminal edges are skipped:
// their requested/responded notifications were either already delivered
// or superseded by the edge's final state.
func (d *Dispatcher) reconcileFollowRequests(ctx context.Context) error {
	var requests []models.FollowRequest
	err := d.db.WithContext(ctx).
		Where("status = ?", models.FollowPending).
		Where(`NOT EXISTS (
			SELECT 1 FROM notifications
			WHERE notifications.kind = ?
			  AND notifications.recipient_id = follow_requests.target_id
			  AND notifications.actor_id = follow_requests.follower_id
			  AND notifications.created_at >= follow_requests.created_at
		)`, models.NotificationFollowRequested).
		Find(&requests).Error
	if err != nil {
		return apperrors.OperationFailed(err)
	}

	for _, request := range requests {
		d.log.Info("reconciling missed follow notification",
			zap.Uint("request_id", request.ID),
			zap.Uint("target_id", request.TargetID))
		if err := d.Dispatch(FollowRequested{
			RequestID:  request.ID,
			FollowerID: request.FollowerID,
			TargetID:   request.TargetID,
			Timestamp:  request.CreatedAt,
		}); err != nil {
			d.log.Error("reconcile dispatch failed", zap.Uint("request_id", request.ID), zap.Error(err))
		}
	}
	return nil
}

// persist writes the notification, retrying a storage failure once.
func (d *Dispatcher) persist(n *models.Notification) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := d.db.Create(n).Error; err != nil {
			lastErr = err
			d.log.Warn("notification persist failed, retrying", zap.Error(err))
			continue
		}
		return nil
	}
	return lastErr
}

// deliver attempts the realtime push. Offline recipients are expected;
// the persisted record is the durable fallback. The pusher serializes
// asynchronously, so it gets its own copy and the delivery-time write
// goes through a keyed update that never touches the pushed struct.
func (d *Dispatcher) deliver(n *models.Notification) {
	if d.pusher == nil {
		return
	}
	pushed := *n
	if !d.pusher.Push(n.RecipientID, &pushed) {
		d.log.Debug("recipient offline, notification stored",
			zap.Uint("recipient_id", n.RecipientID),
			zap.String("kind", n.Kind))
		return
	}
	now := time.Now()
	err := d.db.Model(&models.Notification{}).
		Where("id = ?", n.ID).
		Update("delivered_at", &now).Error
	if err != nil {
		d.log.Warn("failed to record delivery time", zap.Uint("notification_id", n.ID), zap.Error(err))
	}
}

// email mirrors the notification to the recipient's inbox. Failures are
// logged, never surfaced.
func (d *Dispatcher) email(n *models.Notification, templateKind string) {
	if d.mailer == nil {
		return
	}

	var recipient models.User
	if err := d.db.First(&recipient, n.RecipientID).Error; err != nil {
		d.log.Warn("email skipped, recipient lookup failed",
			zap.Uint("recipient_id", n.RecipientID), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.mailer.Send(ctx, recipient.Email, templateKind, n.Payload); err != nil {
			d.log.Warn("email send failed",
				zap.String("template", templateKind), zap.Error(err))
		}
	}()
}
