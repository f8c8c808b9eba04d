package services

import (
	"errors"
	"time"

	"github.com/alum-connect/api-go/apperrors"
	"github.com/alum-connect/api-go/models"
	"github.com/alum-connect/api-go/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Review decisions accepted by Decide.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// VerificationService drives the pending -> approved/rejected transition
// of accounts, scoped to the reviewer's institution.
type VerificationService struct {
	db  *gorm.DB
	bus *EventBus
	log *zap.Logger
}

func NewVerificationService(db *gorm.DB, bus *EventBus, log *zap.Logger) *VerificationService {
	return &VerificationService{db: db, bus: bus, log: log}
}

// ListPending returns the pending accounts of the reviewer's institution,
// oldest first.
func (s *VerificationService) ListPending(reviewer *utils.UserClaims) ([]models.User, error) {
	if reviewer == nil || reviewer.Role != models.RoleInstitutionAdmin {
		return nil, apperrors.Authorization("caller is not an institution reviewer")
	}

	var users []models.User
	err := s.db.
		Where("status = ? AND college = ?", models.StatusPending, reviewer.College).
		Order("created_at asc").
		Find(&users).Error
	if err != nil {
		return nil, apperrors.OperationFailed(err)
	}
	return users, nil
}

// Decide transitions the target account from pending to approved or
// rejected. The status write is a conditional update keyed on the
// expected pending status, so a racing duplicate decision sees zero rows
// affected and fails with InvalidState. On success the VerificationDecided
// event is published synchronously after the commit.
func (s *VerificationService) Decide(accountID uint, decision string, reviewer *utils.UserClaims) error {
	if reviewer == nil || reviewer.Role != models.RoleInstitutionAdmin {
		return apperrors.Authorization("caller is not an institution reviewer")
	}

	var next string
	switch decision {
	case DecisionApprove:
		next = models.StatusApproved
	case DecisionReject:
		next = models.StatusRejected
	default:
		return apperrors.InvalidState("unknown decision %q", decision)
	}

	var account models.User
	if err := s.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("account %d not found", accountID)
		}
		return apperrors.OperationFailed(err)
	}

	if account.College != reviewer.College {
		return apperrors.Authorization("account belongs to a different institution")
	}
	if account.Status != models.StatusPending {
		return apperrors.InvalidState("account is already %s", account.Status)
	}

	rows, err := s.casUpdate(accountID, next)
	if err != nil {
		return apperrors.OperationFailed(err)
	}
	if rows == 0 {
		// A concurrent decision won the race.
		return apperrors.InvalidState("account is no longer pending")
	}

	s.log.Info("account decided",
		zap.Uint("account_id", accountID),
		zap.String("status", next),
		zap.Uint("reviewer_id", reviewer.UserID))

	s.bus.Publish(VerificationDecided{
		AccountID:  accountID,
		Decision:   next,
		ReviewerID: reviewer.UserID,
		Timestamp:  time.Now(),
	})
	return nil
}

// casUpdate performs the conditional status update, retrying a storage
// failure once before giving up.
func (s *VerificationService) casUpdate(accountID uint, next string) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		res := s.db.Model(&models.User{}).
			Where("id = ? AND status = ?", accountID, models.StatusPending).
			Update("status", next)
		if res.Error == nil {
			return res.RowsAffected, nil
		}
		lastErr = res.Error
		s.log.Warn("status update failed, retrying", zap.Uint("account_id", accountID), zap.Error(res.Error))
	}
	return 0, lastErr
}
