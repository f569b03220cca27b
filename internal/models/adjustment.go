package models

import (
	"time"

	"tutorhub/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningsAdjustment is a manual bonus or deduction applied to a tutor's
// payout outside normal booking payments. Amount is stored unsigned; the
// sign comes from Type at aggregation time, never pre-negated.
type EarningsAdjustment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TutorID   uint            `gorm:"not null;index" json:"tutor_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Type      string          `gorm:"size:20;not null" json:"type"` // BONUS | DEDUCTION
	Reason    string          `gorm:"size:512" json:"reason"`
	CreatedBy uint            `gorm:"not null" json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	Tutor User `gorm:"foreignKey:TutorID" json:"-"`
}

func (EarningsAdjustment) TableName() string { return "earnings_adjustments" }

// SignedAmount is +Amount for a bonus, -Amount for a deduction.
func (a *EarningsAdjustment) SignedAmount() decimal.Decimal {
	if a.Type == domain.AdjustmentTypeDeduction {
		return a.Amount.Neg()
	}
	return a.Amount
}
