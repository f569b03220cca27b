package repository

import (
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a match with its dedup key populated. A concurrent insert
// for the same non-rejected triple fails with ErrDuplicateKey.
func (r *MatchRepository) Create(m *models.Match) error {
	key := models.MatchDedupKey(m.TutorID, m.MenteeUserID, m.SubjectID)
	m.DedupKey = &key
	if err := r.db.Create(m).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (r *MatchRepository) GetByID(id uint) (*models.Match, error) {
	var m models.Match
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MatchFilters narrows List; zero values are ignored.
type MatchFilters struct {
	UserID uint
	Role   string // TUTOR | MENTEE, scopes UserID to one side
	Status string
	Limit  int
	Offset int
}

// List returns matches newest first.
func (r *MatchRepository) List(f MatchFilters) ([]models.Match, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	q := r.db.Model(&models.Match{})
	if f.UserID != 0 {
		switch f.Role {
		case domain.RoleTutor:
			q = q.Where("tutor_id = ?", f.UserID)
		case domain.RoleMentee:
			q = q.Where("mentee_user_id = ?", f.UserID)
		default:
			q = q.Where("tutor_id = ? OR mentee_user_id = ?", f.UserID, f.UserID)
		}
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var list []models.Match
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, err
}

// FindActiveByTriple returns the non-rejected match for the triple, if any.
func (r *MatchRepository) FindActiveByTriple(tutorID, menteeUserID uint, subjectID *uint) (*models.Match, error) {
	key := models.MatchDedupKey(tutorID, menteeUserID, subjectID)
	var m models.Match
	err := r.db.Where("dedup_key = ?", key).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Accept records one party's acceptance under a row lock so two concurrent
// accept calls cannot both read stale booleans. The caller's user id must
// hold the claimed role on the match. Returns ErrInvalidState when the match
// is no longer pending.
func (r *MatchRepository) Accept(id, userID uint, role string) (*models.Match, error) {
	var m models.Match
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			return err
		}
		if m.Status != domain.MatchStatusPending {
			return ErrInvalidState
		}
		if _, err := m.ApplyAccept(userID, role, time.Now()); err != nil {
			return err
		}
		return tx.Model(&m).Select("accepted_by_tutor", "accepted_by_mentee", "status", "accepted_at").
			Updates(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Reject is a one-shot terminal transition from pending, taken by one of the
// match's own parties; the dedup key is cleared so the triple can be
// re-matched later.
func (r *MatchRepository) Reject(id, userID uint, role, reason string) (*models.Match, error) {
	var m models.Match
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			return err
		}
		if m.Status != domain.MatchStatusPending {
			return ErrInvalidState
		}
		if err := m.VerifyParty(userID, role); err != nil {
			return err
		}
		m.Status = domain.MatchStatusRejected
		m.RejectionReason = reason
		m.DedupKey = nil
		return tx.Model(&m).Updates(map[string]interface{}{
			"status":           m.Status,
			"rejection_reason": m.RejectionReason,
			"dedup_key":        nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Complete transitions an accepted match to completed.
func (r *MatchRepository) Complete(id uint) (*models.Match, error) {
	var m models.Match
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error; err != nil {
			return err
		}
		if m.Status != domain.MatchStatusAccepted {
			return ErrInvalidState
		}
		m.Status = domain.MatchStatusCompleted
		return tx.Model(&m).Update("status", m.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// incrementSessionStats bumps the session counter and impact score in place.
// Shared with the booking-completion transaction.
func incrementSessionStats(tx *gorm.DB, id uint, impactDelta int) error {
	return tx.Model(&models.Match{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"sessions_completed": gorm.Expr("sessions_completed + 1"),
			"impact_score":       gorm.Expr("impact_score + ?", impactDelta),
		}).Error
}

// ExpireStalePending rejects pending matches created before the cutoff.
func (r *MatchRepository) ExpireStalePending(olderThan time.Time, reason string) (int64, error) {
	res := r.db.Model(&models.Match{}).
		Where("status = ? AND created_at < ?", domain.MatchStatusPending, olderThan).
		Updates(map[string]interface{}{
			"status":           domain.MatchStatusRejected,
			"rejection_reason": reason,
			"dedup_key":        nil,
		})
	return res.RowsAffected, res.Error
}
