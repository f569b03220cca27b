package repository

import (
	"tutorhub/internal/models"

	"gorm.io/gorm"
)

type AdjustmentRepository struct {
	db *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Create(a *models.EarningsAdjustment) error {
	return r.db.Create(a).Error
}

func (r *AdjustmentRepository) ListByTutor(tutorID uint) ([]models.EarningsAdjustment, error) {
	var list []models.EarningsAdjustment
	err := r.db.Where("tutor_id = ?", tutorID).Order("created_at DESC").Find(&list).Error
	return list, err
}
