package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is student feedback on a completed booking, one per booking.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BookingID uint           `gorm:"uniqueIndex;not null" json:"booking_id"`
	StudentID uint           `gorm:"not null;index" json:"student_id"`
	TutorID   uint           `gorm:"not null;index" json:"tutor_id"`
	Rating    int            `gorm:"not null" json:"rating"` // 1..5
	Comment   string         `gorm:"type:text" json:"comment"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Booking Booking `gorm:"foreignKey:BookingID" json:"-"`
	Student User    `gorm:"foreignKey:StudentID" json:"-"`
	Tutor   User    `gorm:"foreignKey:TutorID" json:"-"`
}

func (Review) TableName() string { return "reviews" }
