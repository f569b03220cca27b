package service

import (
	"fmt"
	"testing"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// creditStoreStub applies the same model-level guards the real repository
// does, backed by maps instead of MySQL.
type creditStoreStub struct {
	rows     map[uint]*models.CreditTransaction
	balances map[string]decimal.Decimal
	nextID   uint
}

func newCreditStoreStub() *creditStoreStub {
	return &creditStoreStub{
		rows:     map[uint]*models.CreditTransaction{},
		balances: map[string]decimal.Decimal{},
		nextID:   1,
	}
}

func balanceKey(userID uint, year string) string {
	return fmt.Sprintf("%d:%s", userID, year)
}

func (s *creditStoreStub) Create(ct *models.CreditTransaction) error {
	ct.ID = s.nextID
	s.nextID++
	s.rows[ct.ID] = ct
	return nil
}

func (s *creditStoreStub) GetByID(id uint) (*models.CreditTransaction, error) {
	ct, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ct, nil
}

func (s *creditStoreStub) MarkReviewed(id uint, status string, reviewerID uint, notes string) (*models.CreditTransaction, error) {
	ct, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := ct.ApplyReview(status, reviewerID, notes, time.Now()); err != nil {
		return nil, repository.ErrInvalidState
	}
	return ct, nil
}

func (s *creditStoreStub) Credit(id uint) (*models.CreditTransaction, error) {
	ct, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := ct.CanCredit(); err != nil {
		return nil, repository.ErrInvalidState
	}
	now := time.Now()
	ct.Status = domain.CreditStatusCredited
	ct.CreditedAt = &now
	key := balanceKey(ct.UserID, ct.AcademicYear)
	s.balances[key] = s.balances[key].Add(ct.CreditsEarned)
	return ct, nil
}

func (s *creditStoreStub) GetBalance(userID uint, year string) (*models.CreditBalance, error) {
	return &models.CreditBalance{
		UserID:       userID,
		AcademicYear: year,
		Balance:      s.balances[balanceKey(userID, year)],
	}, nil
}

func pendingCredit(store *creditStoreStub, userID uint, amount string) *models.CreditTransaction {
	ct := &models.CreditTransaction{
		UserID:        userID,
		InstitutionID: 1,
		BookingID:     1,
		CreditsEarned: decimal.RequireFromString(amount),
		AcademicYear:  "2025-2026",
		Status:        domain.CreditStatusPending,
		SubmittedAt:   time.Now(),
	}
	_ = store.Create(ct)
	return ct
}

func TestCreditApprove(t *testing.T) {
	store := newCreditStoreStub()
	ct := pendingCredit(store, 5, "1.00")
	svc := NewCreditService(store, zap.NewNop())

	out, err := svc.Approve(ct.ID, 99, "verified session log")
	require.NoError(t, err)
	assert.Equal(t, domain.CreditStatusApproved, out.Status)
	require.NotNil(t, out.ReviewerID)
	assert.Equal(t, uint(99), *out.ReviewerID)
	assert.NotNil(t, out.ReviewedAt)
}

func TestCreditApprove_NotPending(t *testing.T) {
	store := newCreditStoreStub()
	ct := pendingCredit(store, 5, "1.00")
	svc := NewCreditService(store, zap.NewNop())

	_, err := svc.Approve(ct.ID, 99, "")
	require.NoError(t, err)

	_, err = svc.Approve(ct.ID, 99, "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCreditReject_IsTerminal(t *testing.T) {
	store := newCreditStoreStub()
	ct := pendingCredit(store, 5, "1.00")
	svc := NewCreditService(store, zap.NewNop())

	out, err := svc.Reject(ct.ID, 99, "no session evidence")
	require.NoError(t, err)
	assert.Equal(t, domain.CreditStatusRejected, out.Status)

	_, err = svc.Approve(ct.ID, 99, "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCreditApply_RequiresApproval(t *testing.T) {
	store := newCreditStoreStub()
	ct := pendingCredit(store, 5, "1.00")
	svc := NewCreditService(store, zap.NewNop())

	_, err := svc.Credit(ct.ID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCreditApply_IncrementsBalanceExactlyOnce(t *testing.T) {
	store := newCreditStoreStub()
	ct := pendingCredit(store, 5, "1.00")
	svc := NewCreditService(store, zap.NewNop())

	_, err := svc.Approve(ct.ID, 99, "")
	require.NoError(t, err)

	out, err := svc.Credit(ct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CreditStatusCredited, out.Status)
	assert.NotNil(t, out.CreditedAt)

	bal, err := svc.Balance(5, "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, "1.00", bal.Balance.StringFixed(2))

	// A retry after success must not credit twice.
	_, err = svc.Credit(ct.ID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))

	bal, err = svc.Balance(5, "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, "1.00", bal.Balance.StringFixed(2))
}

func TestCreditApply_NotFound(t *testing.T) {
	svc := NewCreditService(newCreditStoreStub(), zap.NewNop())

	_, err := svc.Credit(123)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

