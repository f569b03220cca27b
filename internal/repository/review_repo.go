package repository

import (
	"tutorhub/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review; the per-booking unique index turns a second
// review for the same booking into ErrDuplicateKey.
func (r *ReviewRepository) Create(rev *models.Review) error {
	if err := r.db.Create(rev).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *ReviewRepository) ListByTutor(tutorID uint, limit, offset int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	var list []models.Review
	err := r.db.Where("tutor_id = ?", tutorID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// AverageRating returns the tutor's mean rating, 0 when unreviewed.
func (r *ReviewRepository) AverageRating(tutorID uint) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Review{}).Select("AVG(rating)").Where("tutor_id = ?", tutorID).Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
