package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// MatchingPreferences is a tutor's opt-in configuration for the scorer.
// PreferredSubjects is a JSON-serialized list of subject ids; a corrupt value
// degrades to the empty set rather than failing the request.
type MatchingPreferences struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	IsActive             bool           `gorm:"not null;default:false;index" json:"is_active"`
	PreferRemoteStudents bool           `gorm:"not null;default:false" json:"prefer_remote_students"`
	PreferredSubjects    string         `gorm:"type:text" json:"-"`
	OnlineOnly           bool           `gorm:"not null;default:false" json:"online_only"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (MatchingPreferences) TableName() string { return "matching_preferences" }

// SubjectIDs decodes the serialized preferred-subjects list.
func (p *MatchingPreferences) SubjectIDs() []uint {
	return DecodeSubjectIDs(p.PreferredSubjects)
}

// SetSubjectIDs serializes the list; nil stores an empty array.
func (p *MatchingPreferences) SetSubjectIDs(ids []uint) {
	if ids == nil {
		ids = []uint{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		p.PreferredSubjects = "[]"
		return
	}
	p.PreferredSubjects = string(raw)
}

// DecodeSubjectIDs parses a JSON subject-id list, treating any decode failure
// as a recoverable empty set.
func DecodeSubjectIDs(raw string) []uint {
	if raw == "" {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

// MatchCandidate is the scorer's read-side projection of a user joined with
// their active matching preferences.
type MatchCandidate struct {
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	InstitutionID     *uint  `json:"institution_id"`
	AcademicYear      int    `json:"academic_year"`
	PreferredSubjects []uint `json:"preferred_subjects"`
	OnlineOnly        bool   `json:"online_only"`
}
