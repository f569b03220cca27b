package repository

import (
	"errors"

	"tutorhub/internal/models"

	"gorm.io/gorm"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) GetByUserID(userID uint) (*models.MatchingPreferences, error) {
	var p models.MatchingPreferences
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates or replaces the user's preference row.
func (r *PreferenceRepository) Upsert(p *models.MatchingPreferences) error {
	var existing models.MatchingPreferences
	err := r.db.Where("user_id = ?", p.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(p).Error
	}
	if err != nil {
		return err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return r.db.Save(p).Error
}

// ListMatchCandidates returns users with an active preference row that opts
// into remote students, excluding the mentee, capped at limit. The order is
// deterministic (user id ascending) so ties in scoring keep query order.
func (r *PreferenceRepository) ListMatchCandidates(excludeUserID uint, limit int) ([]models.MatchCandidate, error) {
	var rows []struct {
		UserID            uint
		Username          string
		InstitutionID     *uint
		AcademicYear      int
		PreferredSubjects string
		OnlineOnly        bool
	}
	err := r.db.Table("matching_preferences mp").
		Select("u.id as user_id, u.username, u.institution_id, u.academic_year, mp.preferred_subjects, mp.online_only").
		Joins("INNER JOIN users u ON u.id = mp.user_id AND u.deleted_at IS NULL").
		Where("mp.deleted_at IS NULL AND mp.user_id != ? AND mp.is_active = ? AND mp.prefer_remote_students = ?",
			excludeUserID, true, true).
		Order("u.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.MatchCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.MatchCandidate{
			UserID:            row.UserID,
			Username:          row.Username,
			InstitutionID:     row.InstitutionID,
			AcademicYear:      row.AcademicYear,
			PreferredSubjects: models.DecodeSubjectIDs(row.PreferredSubjects),
			OnlineOnly:        row.OnlineOnly,
		})
	}
	return out, nil
}
