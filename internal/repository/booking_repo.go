package repository

import (
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BookingFilters narrows List; zero values are ignored.
type BookingFilters struct {
	TutorID   uint
	StudentID uint
	Status    string
	Limit     int
	Offset    int
}

func (r *BookingRepository) List(f BookingFilters) ([]models.Booking, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	q := r.db.Model(&models.Booking{})
	if f.TutorID != 0 {
		q = q.Where("tutor_id = ?", f.TutorID)
	}
	if f.StudentID != 0 {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.Booking
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// ListByTutor returns all of a tutor's bookings for earnings aggregation.
func (r *BookingRepository) ListByTutor(tutorID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("tutor_id = ?", tutorID).Find(&list).Error
	return list, err
}

// SessionCompletion bundles the follow-up writes that must land in the same
// transaction as the booking's status flip: the linked match's counters and,
// for qualifying cross-institution sessions, the pending credit row.
type SessionCompletion struct {
	MatchID     *uint
	ImpactDelta int
	Credit      *models.CreditTransaction
}

// Complete transitions a pending or confirmed booking to completed under a
// row lock and applies the completion's follow-up writes atomically. A
// failure anywhere rolls the whole chain back, leaving the booking
// retryable. Returns ErrInvalidState when the booking is already settled.
func (r *BookingRepository) Complete(id uint, c SessionCompletion) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			return err
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			return ErrInvalidState
		}
		now := time.Now()
		b.Status = domain.BookingStatusCompleted
		b.CompletedAt = &now
		if err := tx.Model(&b).Select("status", "completed_at").Updates(&b).Error; err != nil {
			return err
		}
		if c.MatchID != nil {
			if err := incrementSessionStats(tx, *c.MatchID, c.ImpactDelta); err != nil {
				return err
			}
		}
		if c.Credit != nil {
			if err := tx.Create(c.Credit).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}
