package services

import (
	"sync"
	"testing"

	"github.com/alum-connect/api-go/apperrors"
	"github.com/alum-connect/api-go/models"
	"github.com/alum-connect/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reviewerClaims(reviewer *models.User) *utils.UserClaims {
	return &utils.UserClaims{
		UserID:  reviewer.ID,
		Role:    reviewer.Role,
		College: reviewer.College,
	}
}

func TestDecideApprove(t *testing.T) {
	db := newTestDB(t)
	bus := NewEventBus(8)
	svc := NewVerificationService(db, bus, zap.NewNop())

	applicant := createAccount(t, db, "alice@mit.edu", models.RoleAlumni, models.StatusPending, "MIT")
	reviewer := createAccount(t, db, "reviewer@mit.edu", models.RoleInstitutionAdmin, models.StatusApproved, "MIT")

	require.NoError(t, svc.Decide(applicant.ID, DecisionApprove, reviewerClaims(reviewer)))

	var updated models.User
	require.NoError(t, db.First(&updated, applicant.ID).Error)
	assert.Equal(t, models.StatusApproved, updated.Status)

	events := drainEvents(bus)
	require.Len(t, events, 1)
	decided, ok := events[0].(VerificationDecided)
	require.True(t, ok)
	assert.Equal(t, applicant.ID, decided.AccountID)
	assert.Equal(t, models.StatusApproved, decided.Decision)
	assert.Equal(t, reviewer.ID, decided.ReviewerID)
}

func TestDecideRejectIsTerminal(t *testing.T) {
	db := newTestDB(t)
	bus := NewEventBus(8)
	svc := NewVerificationService(db, bus, zap.NewNop())

	applicant := createAccount(t, db, "bob@mit.edu", models.RoleStudent, models.StatusPending, "MIT")
	reviewer := createAccount(t, db, "reviewer@mit.edu", models.RoleInstitutionAdmin, models.StatusApproved, "MIT")

	require.NoError(t, svc.Decide(applicant.ID, DecisionReject, reviewerClaims(reviewer)))

	// No transition leaves a terminal state, in either direction.
	err := svc.Decide(applicant.ID, DecisionApprove, reviewerClaims(reviewer))
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	err = svc.Decide(applicant.ID, DecisionReject, reviewerClaims(reviewer))
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	assert.Len(t, drainEvents(bus), 1)
}

func TestDecideUnknownAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewVerificationService(db, NewEventBus(8), zap.NewNop())

	reviewer := createAccount(t, db, "reviewer@mit.edu", models.RoleInstitutionAdmin, models.StatusApproved, "MIT")

	err := svc.Decide(9999, DecisionApprove, reviewerClaims(reviewer))
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDecideScopeMismatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewVerificationService(db, NewEventBus(8), zap.NewNop())

	applicant := createAccount(t, db, "carol@mit.edu", models.RoleAlumni, models.StatusPending, "MIT")
	reviewer := createAccount(t, db, "reviewer@stanford.edu", models.RoleInstitutionAdmin, models.StatusApproved, "Stanford")

	err := svc.Decide(applicant.ID, DecisionApprove, reviewerClaims(reviewer))
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestDecideRequiresReviewerRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewVerificationService(db, NewEventBus(8), zap.NewNop())

	applicant := createAccount(t, db, "dave@mit.edu", models.RoleAlumni, models.StatusPending, "MIT")
	peer := createAccount(t, db, "eve@mit.edu", models.RoleStudent, models.StatusApproved, "MIT")

	err := svc.Decide(applicant.ID, DecisionApprove, reviewerClaims(peer))
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestListPendingScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewVerificationService(db, NewEventBus(8), zap.NewNop())

	createAccount(t, db, "a@mit.edu", models.RoleAlumni, models.StatusPending, "MIT")
	createAccount(t, db, "b@mit.edu", models.RoleStudent, models.StatusPending, "MIT")
	createAccount(t, db, "c@mit.edu", models.RoleAlumni, models.StatusApproved, "MIT")
	createAccount(t, db, "d@stanford.edu", models.RoleAlumni, models.StatusPending, "Stanford")
	reviewer := createAccount(t, db, "reviewer@mit.edu", models.RoleInstitutionAdmin, models.StatusApproved, "MIT")

	pending, err := svc.ListPending(reviewerClaims(reviewer))
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, user := range pending {
		assert.Equal(t, models.StatusPending, user.Status)
		assert.Equal(t, "MIT", user.College)
	}
}

func TestListPendingRequiresReviewer(t *testing.T) {
	db := newTestDB(t)
	svc := NewVerificationService(db, NewEventBus(8), zap.NewNop())

	student := createAccount(t, db, "s@mit.edu", models.RoleStudent, models.StatusApproved, "MIT")

	_, err := svc.ListPending(reviewerClaims(student))
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuthorization))
}

func TestDecideConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	bus := NewEventBus(8)
	svc := NewVerificationService(db, bus, zap.NewNop())

	applicant := createAccount(t, db, "race@mit.edu", models.RoleAlumni, models.StatusPending, "MIT")
	reviewer := createAccount(t, db, "reviewer@mit.edu", models.RoleInstitutionAdmin, models.StatusApproved, "MIT")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	decisions := []string{DecisionApprove, DecisionReject}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Decide(applicant.ID, decisions[i], reviewerClaims(reviewer))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		}
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, drainEvents(bus), 1)
}
