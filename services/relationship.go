package services

import (
	"errors"
	"strings"
	"time"

	"github.com/alum-connect/api-go/apperrors"
	"github.com/alum-connect/api-go/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Follow response decisions accepted by RespondFollow.
const (
	FollowAccept = "accept"
	FollowReject = "reject"
)

// RelationshipService manages directed follow requests between approved
// accounts.
type RelationshipService struct {
	db  *gorm.DB
	bus *EventBus
	log *zap.Logger
}

func NewRelationshipService(db *gorm.DB, bus *EventBus, log *zap.Logger) *RelationshipService {
	return &RelationshipService{db: db, bus: bus, log: log}
}

// RequestFollow creates a pending follow edge from follower to target.
// Both accounts must exist and be approved. At most one outstanding
// (pending or accepted) edge may exist per pair; the partial unique index
// backs the pre-check, so a racing duplicate insert also surfaces as
// Duplicate. A previously rejected edge does not block a fresh request.
func (s *RelationshipService) RequestFollow(followerID, targetID uint) (*models.FollowRequest, error) {
	if followerID == targetID {
		return nil, apperrors.SelfFollow()
	}

	if err := s.requireApproved(followerID); err != nil {
		return nil, err
	}
	if err := s.requireApproved(targetID); err != nil {
		return nil, err
	}

	var existing models.FollowRequest
	err := s.db.
		Where("follower_id = ? AND target_id = ? AND status IN ?",
			followerID, targetID, []string{models.FollowPending, models.FollowAccepted}).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.Duplicate("follow request already %s", existing.Status)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.OperationFailed(err)
	}

	request := models.FollowRequest{
		FollowerID: followerID,
		TargetID:   targetID,
		Status:     models.FollowPending,
	}
	if err := s.db.Create(&request).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, apperrors.Duplicate("follow request already exists")
		}
		return nil, apperrors.OperationFailed(err)
	}

	s.log.Info("follow requested",
		zap.Uint("request_id", request.ID),
		zap.Uint("follower_id", followerID),
		zap.Uint("target_id", targetID))

	s.bus.Publish(FollowRequested{
		RequestID:  request.ID,
		FollowerID: followerID,
		TargetID:   targetID,
		Timestamp:  time.Now(),
	})
	return &request, nil
}

// RespondFollow transitions a pending request to accepted or rejected.
// Only the request's target may respond, regardless of request status.
// The transition is a conditional update keyed on the pending status, so
// concurrent duplicate responses yield exactly one success.
func (s *RelationshipService) RespondFollow(requestID, callerID uint, decision string) (*models.FollowRequest, error) {
	var next string
	switch decision {
	case FollowAccept:
		next = models.FollowAccepted
	case FollowReject:
		next = models.FollowRejected
	default:
		return nil, apperrors.InvalidState("unknown decision %q", decision)
	}

	var request models.FollowRequest
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("follow request %d not found", requestID)
		}
		return nil, apperrors.OperationFailed(err)
	}

	if request.TargetID != callerID {
		return nil, apperrors.Authorization("only the request target may respond")
	}
	if request.Status != models.FollowPending {
		return nil, apperrors.InvalidState("follow request is already %s", request.Status)
	}

	rows, err := s.casUpdate(requestID, next)
	if err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	if rows == 0 {
		return nil, apperrors.InvalidState("follow request is no longer pending")
	}
	request.Status = next

	s.log.Info("follow responded",
		zap.Uint("request_id", requestID),
		zap.String("status", next))

	s.bus.Publish(FollowResponded{
		RequestID:  requestID,
		FollowerID: request.FollowerID,
		TargetID:   request.TargetID,
		Decision:   next,
		Timestamp:  time.Now(),
	})
	return &request, nil
}

// ListIncoming returns follow requests addressed to the account, newest
// first, optionally filtered by status.
func (s *RelationshipService) ListIncoming(accountID uint, statusFilter string) ([]models.FollowRequest, error) {
	q := s.db.Preload("Follower").Where("target_id = ?", accountID)
	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}

	var requests []models.FollowRequest
	if err := q.Order("created_at desc").Find(&requests).Error; err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	return requests, nil
}

// ListFollowing returns only accepted edges where the account is the
// follower.
func (s *RelationshipService) ListFollowing(accountID uint) ([]models.FollowRequest, error) {
	var edges []models.FollowRequest
	err := s.db.Preload("Target").
		Where("follower_id = ? AND status = ?", accountID, models.FollowAccepted).
		Order("created_at desc").
		Find(&edges).Error
	if err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	return edges, nil
}

// isDuplicateErr recognizes a unique-index violation across drivers.
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func (s *RelationshipService) requireApproved(accountID uint) error {
	var user models.User
	if err := s.db.First(&user, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("account %d not found", accountID)
		}
		return apperrors.OperationFailed(err)
	}
	if !user.IsApproved() {
		return apperrors.NotFound("account %d is not approved", accountID)
	}
	return nil
}

func (s *RelationshipService) casUpdate(requestID uint, next string) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		res := s.db.Model(&models.FollowRequest{}).
			Where("id = ? AND status = ?", requestID, models.FollowPending).
			Update("status", next)
		if res.Error == nil {
			return res.RowsAffected, nil
		}
		lastErr = res.Error
		s.log.Warn("follow update failed, retrying", zap.Uint("request_id", requestID), zap.Error(res.Error))
	}
	return 0, lastErr
}
