package repository

import (
	"errors"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) Create(ct *models.CreditTransaction) error {
	return r.db.Create(ct).Error
}

func (r *CreditRepository) GetByID(id uint) (*models.CreditTransaction, error) {
	var ct models.CreditTransaction
	err := r.db.First(&ct, id).Error
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// CreditFilters narrows List; zero values are ignored.
type CreditFilters struct {
	UserID        uint
	InstitutionID uint
	Status        string
	Limit         int
	Offset        int
}

// List returns credit transactions newest first.
func (r *CreditRepository) List(f CreditFilters) ([]models.CreditTransaction, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	q := r.db.Model(&models.CreditTransaction{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.InstitutionID != 0 {
		q = q.Where("institution_id = ?", f.InstitutionID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.CreditTransaction
	err := q.Order("submitted_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// MarkReviewed applies the reviewer's approve/reject decision under a row
// lock. Returns ErrInvalidState when the transaction is not pending.
func (r *CreditRepository) MarkReviewed(id uint, status string, reviewerID uint, notes string) (*models.CreditTransaction, error) {
	var ct models.CreditTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ct, id).Error; err != nil {
			return err
		}
		if err := ct.ApplyReview(status, reviewerID, notes, time.Now()); err != nil {
			return ErrInvalidState
		}
		return tx.Model(&ct).Select("status", "reviewer_id", "reviewed_at", "review_notes").Updates(&ct).Error
	})
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// Credit performs the APPROVED -> CREDITED transition and the balance
// increment in one transaction. The credited-timestamp guard makes a second
// invocation fail with ErrInvalidState without touching the balance, and a
// crash after approval leaves the row retryably APPROVED.
func (r *CreditRepository) Credit(id uint) (*models.CreditTransaction, error) {
	var ct models.CreditTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ct, id).Error; err != nil {
			return err
		}
		if err := ct.CanCredit(); err != nil {
			return ErrInvalidState
		}
		now := time.Now()
		if err := tx.Model(&ct).Updates(map[string]interface{}{
			"status":      domain.CreditStatusCredited,
			"credited_at": now,
		}).Error; err != nil {
			return err
		}
		ct.CreditedAt = &now
		ct.Status = domain.CreditStatusCredited
		return addToBalance(tx, ct.UserID, ct.AcademicYear, ct.CreditsEarned)
	})
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func addToBalance(tx *gorm.DB, userID uint, year string, amount decimal.Decimal) error {
	var bal models.CreditBalance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND academic_year = ?", userID, year).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bal = models.CreditBalance{UserID: userID, AcademicYear: year, Balance: amount}
		return tx.Create(&bal).Error
	}
	if err != nil {
		return err
	}
	bal.Balance = bal.Balance.Add(amount)
	return tx.Model(&bal).Update("balance", bal.Balance).Error
}

// GetBalance returns the user's running balance for the academic year; a
// missing row reads as zero.
func (r *CreditRepository) GetBalance(userID uint, year string) (*models.CreditBalance, error) {
	var bal models.CreditBalance
	err := r.db.Where("user_id = ? AND academic_year = ?", userID, year).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CreditBalance{UserID: userID, AcademicYear: year, Balance: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return &bal, nil
}
