package service

import (
	"errors"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"

	"go.uber.org/zap"
)

type CreditStore interface {
	MarkReviewed(id uint, status string, reviewerID uint, notes string) (*models.CreditTransaction, error)
	Credit(id uint) (*models.CreditTransaction, error)
	GetBalance(userID uint, year string) (*models.CreditBalance, error)
}

// CreditService drives the credit lifecycle: pending transactions are
// reviewed by institutional staff, and approved ones are credited to the
// user's running balance in a separate, idempotent step.
type CreditService struct {
	credits CreditStore
	log     *zap.Logger
}

func NewCreditService(credits CreditStore, log *zap.Logger) *CreditService {
	return &CreditService{credits: credits, log: log}
}

// Approve moves a pending transaction to approved, recording the reviewer.
func (s *CreditService) Approve(id, reviewerID uint, notes string) (*models.CreditTransaction, error) {
	return s.review(id, domain.CreditStatusApproved, reviewerID, notes)
}

// Reject is terminal.
func (s *CreditService) Reject(id, reviewerID uint, notes string) (*models.CreditTransaction, error) {
	return s.review(id, domain.CreditStatusRejected, reviewerID, notes)
}

func (s *CreditService) review(id uint, status string, reviewerID uint, notes string) (*models.CreditTransaction, error) {
	ct, err := s.credits.MarkReviewed(id, status, reviewerID, notes)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, domain.NotFoundf("credit transaction %d not found", id)
		}
		if errors.Is(err, repository.ErrInvalidState) {
			return nil, domain.Conflictf("credit transaction %d is not pending review", id)
		}
		return nil, domain.Internal("credit review failed", err)
	}
	s.log.Info("credit transaction reviewed",
		zap.Uint("credit_id", ct.ID),
		zap.String("status", ct.Status),
		zap.Uint("reviewer_id", reviewerID))
	return ct, nil
}

// Credit applies an approved transaction to the user's balance. Calling it
// again for the same id fails with a conflict and leaves the balance alone.
func (s *CreditService) Credit(id uint) (*models.CreditTransaction, error) {
	ct, err := s.credits.Credit(id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, domain.NotFoundf("credit transaction %d not found", id)
		}
		if errors.Is(err, repository.ErrInvalidState) {
			return nil, domain.Conflictf("credit transaction %d is not approved or was already credited", id)
		}
		return nil, domain.Internal("credit apply failed", err)
	}
	s.log.Info("credit applied to balance",
		zap.Uint("credit_id", ct.ID),
		zap.Uint("user_id", ct.UserID),
		zap.String("credits_earned", ct.CreditsEarned.String()))
	return ct, nil
}

// Balance returns the running balance for a user and academic year.
func (s *CreditService) Balance(userID uint, year string) (*models.CreditBalance, error) {
	bal, err := s.credits.GetBalance(userID, year)
	if err != nil {
		return nil, domain.Internal("balance lookup failed", err)
	}
	return bal, nil
}
