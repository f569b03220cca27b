package models

import (
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrUnknownAcceptor = errors.New("accept role must be TUTOR or MENTEE")
	ErrNotParticipant  = errors.New("user is not a party to this match")
)

// Match is a proposed or active tutor-mentee pairing for a subject.
//
// DedupKey enforces at the storage layer that at most one non-rejected match
// exists per (tutor, mentee, subject) triple: it is set on creation and
// cleared when the match is rejected, so concurrent creates collapse into a
// unique-constraint violation instead of a duplicate row.
type Match struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	TutorID              uint           `gorm:"not null;index" json:"tutor_id"`
	MenteeUserID         uint           `gorm:"not null;index" json:"mentee_user_id"`
	TutorInstitutionID   uint           `gorm:"not null" json:"tutor_institution_id"`
	MenteeInstitutionID  uint           `gorm:"not null" json:"mentee_institution_id"`
	SubjectID            *uint          `gorm:"index" json:"subject_id"`
	MatchScore           int            `gorm:"not null;default:0" json:"match_score"`
	Status               string         `gorm:"size:20;not null;index" json:"status"` // PENDING, ACCEPTED, REJECTED, COMPLETED
	ProposedBy           string         `gorm:"size:20;not null" json:"proposed_by"`  // MANUAL | ALGORITHM
	MatchReason          string         `gorm:"size:512" json:"match_reason"`
	AcceptedByTutor      bool           `gorm:"not null;default:false" json:"accepted_by_tutor"`
	AcceptedByMentee     bool           `gorm:"not null;default:false" json:"accepted_by_mentee"`
	AcceptedAt           *time.Time     `json:"accepted_at"`
	RejectionReason      string         `gorm:"size:512" json:"rejection_reason"`
	SessionsCompleted    int            `gorm:"not null;default:0" json:"sessions_completed"`
	ImpactScore          int            `gorm:"not null;default:0" json:"impact_score"`
	DedupKey             *string        `gorm:"uniqueIndex;size:96" json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Tutor  User `gorm:"foreignKey:TutorID" json:"-"`
	Mentee User `gorm:"foreignKey:MenteeUserID" json:"-"`
}

func (Match) TableName() string { return "matches" }

// MatchDedupKey builds the uniqueness key for a non-rejected triple.
func MatchDedupKey(tutorID, menteeUserID uint, subjectID *uint) string {
	var sid uint
	if subjectID != nil {
		sid = *subjectID
	}
	return fmt.Sprintf("t%d:m%d:s%d", tutorID, menteeUserID, sid)
}

// IsCrossInstitution is derived, never stored as a mutable flag.
func (m *Match) IsCrossInstitution() bool {
	return m.TutorInstitutionID != m.MenteeInstitutionID
}

// VerifyParty checks that userID actually holds the claimed side of the
// match. Transitions taken on behalf of a party must pass this before
// applying anything.
func (m *Match) VerifyParty(userID uint, role string) error {
	switch role {
	case domain.RoleTutor:
		if m.TutorID != userID {
			return ErrNotParticipant
		}
	case domain.RoleMentee:
		if m.MenteeUserID != userID {
			return ErrNotParticipant
		}
	default:
		return ErrUnknownAcceptor
	}
	return nil
}

// ApplyAccept records one party's acceptance and re-checks the combined
// condition: the match flips to ACCEPTED only once both booleans are true.
// Callers must hold a row lock; returns true when the flip happened on this
// call.
func (m *Match) ApplyAccept(userID uint, role string, now time.Time) (bool, error) {
	if m.Status != domain.MatchStatusPending {
		return false, fmt.Errorf("match %d is %s, not %s", m.ID, m.Status, domain.MatchStatusPending)
	}
	if err := m.VerifyParty(userID, role); err != nil {
		return false, err
	}
	if role == domain.RoleTutor {
		m.AcceptedByTutor = true
	} else {
		m.AcceptedByMentee = true
	}
	if m.AcceptedByTutor && m.AcceptedByMentee {
		m.Status = domain.MatchStatusAccepted
		m.AcceptedAt = &now
		return true, nil
	}
	return false, nil
}
