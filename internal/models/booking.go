package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking is a scheduled tutoring session. Price is fixed-point decimal to
// keep earnings aggregation drift-free over many rows.
type Booking struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TutorID     uint            `gorm:"not null;index" json:"tutor_id"`
	StudentID   uint            `gorm:"not null;index" json:"student_id"`
	SubjectID   *uint           `gorm:"index" json:"subject_id"`
	MatchID     *uint           `gorm:"index" json:"match_id"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency    string          `gorm:"size:3;default:'USD'" json:"currency"`
	Status      string          `gorm:"size:20;not null;index" json:"status"` // PENDING, CONFIRMED, COMPLETED, CANCELLED
	ScheduledAt *time.Time      `json:"scheduled_at"`
	CompletedAt *time.Time      `json:"completed_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Tutor   User  `gorm:"foreignKey:TutorID" json:"-"`
	Student User  `gorm:"foreignKey:StudentID" json:"-"`
	Match   *Match `gorm:"foreignKey:MatchID" json:"-"`
}

func (Booking) TableName() string { return "bookings" }
