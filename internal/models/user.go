package models

import (
	"time"

	"tutorhub/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email         string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role          string         `gorm:"size:20;not null;index" json:"role"` // STUDENT | TUTOR | COORDINATOR | REVIEWER
	InstitutionID *uint          `gorm:"index" json:"institution_id"`        // nil = unaffiliated
	AcademicYear  int            `gorm:"default:0" json:"academic_year"`     // year of study, 0 = unknown
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Institution *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
}

func (u *User) IsTutor() bool   { return u.Role == domain.RoleTutor }
func (u *User) IsStudent() bool { return u.Role == domain.RoleStudent }

// IsAffiliated reports whether the user belongs to an institution. Core
// operations distinguish "not found" from "found but unaffiliated".
func (u *User) IsAffiliated() bool { return u.InstitutionID != nil }

type Institution struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Region    string         `gorm:"size:128" json:"region"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Institution) TableName() string { return "institutions" }

type Subject struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Category  string         `gorm:"size:64" json:"category"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Subject) TableName() string { return "subjects" }
