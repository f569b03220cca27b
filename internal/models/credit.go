package models

import (
	"fmt"
	"time"

	"tutorhub/internal/domain"

	"github.com/shopspring/decimal"
)

// CreditTransaction is one unit of institutional credit tied to a completed
// session. Rows are never soft-deleted; the table is an audit trail.
//
// Lifecycle: PENDING -> APPROVED -> CREDITED, or PENDING -> REJECTED.
// The balance is touched only at the CREDITED transition.
type CreditTransaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	InstitutionID uint            `gorm:"not null;index" json:"institution_id"`
	BookingID     uint            `gorm:"not null;index" json:"booking_id"`
	CreditsEarned decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"credits_earned"`
	AcademicYear  string          `gorm:"size:9;not null;index" json:"academic_year"` // e.g. 2025-2026
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	ReviewerID    *uint           `json:"reviewer_id"`
	ReviewedAt    *time.Time      `json:"reviewed_at"`
	ReviewNotes   string          `gorm:"size:512" json:"review_notes"`
	CreditedAt    *time.Time      `json:"credited_at"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }

// NewPendingCredit builds the submission row for a qualifying completed
// session, stamped with the academic year containing now.
func NewPendingCredit(userID, institutionID, bookingID uint, amount decimal.Decimal, now time.Time) *CreditTransaction {
	return &CreditTransaction{
		UserID:        userID,
		InstitutionID: institutionID,
		BookingID:     bookingID,
		CreditsEarned: amount,
		AcademicYear:  AcademicYearOf(now),
		Status:        domain.CreditStatusPending,
		SubmittedAt:   now,
	}
}

// CanReview guards the PENDING -> APPROVED/REJECTED transitions.
func (ct *CreditTransaction) CanReview() error {
	if ct.Status != domain.CreditStatusPending {
		return fmt.Errorf("credit transaction %d is %s, expected %s", ct.ID, ct.Status, domain.CreditStatusPending)
	}
	return nil
}

// CanCredit guards APPROVED -> CREDITED. The credited-timestamp check makes
// the transition idempotent per transaction id.
func (ct *CreditTransaction) CanCredit() error {
	if ct.CreditedAt != nil || ct.Status == domain.CreditStatusCredited {
		return fmt.Errorf("credit transaction %d already credited", ct.ID)
	}
	if ct.Status != domain.CreditStatusApproved {
		return fmt.Errorf("credit transaction %d is %s, expected %s", ct.ID, ct.Status, domain.CreditStatusApproved)
	}
	return nil
}

// ApplyReview records the reviewer's decision. Valid statuses are APPROVED
// and REJECTED; REJECTED is terminal.
func (ct *CreditTransaction) ApplyReview(status string, reviewerID uint, notes string, now time.Time) error {
	if status != domain.CreditStatusApproved && status != domain.CreditStatusRejected {
		return fmt.Errorf("invalid review status %q", status)
	}
	if err := ct.CanReview(); err != nil {
		return err
	}
	ct.Status = status
	ct.ReviewerID = &reviewerID
	ct.ReviewedAt = &now
	ct.ReviewNotes = notes
	return nil
}

// CreditBalance is a user's running credit total for one academic year,
// incremented only by the CREDITED transition.
type CreditBalance struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"not null;uniqueIndex:idx_balance_user_year" json:"user_id"`
	AcademicYear string          `gorm:"size:9;not null;uniqueIndex:idx_balance_user_year" json:"academic_year"`
	Balance      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditBalance) TableName() string { return "credit_balances" }

// AcademicYearOf formats the school year containing t, rolling over in August.
func AcademicYearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < time.August {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}
