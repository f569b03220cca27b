package models

import (
	"testing"
	"time"

	"tutorhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingMatch() *Match {
	return &Match{
		ID:                  1,
		TutorID:             10,
		MenteeUserID:        20,
		TutorInstitutionID:  1,
		MenteeInstitutionID: 2,
		Status:              domain.MatchStatusPending,
	}
}

func TestApplyAccept_SingleSideStaysPending(t *testing.T) {
	m := pendingMatch()

	flipped, err := m.ApplyAccept(10, domain.RoleTutor, time.Now())
	require.NoError(t, err)
	assert.False(t, flipped)
	assert.Equal(t, domain.MatchStatusPending, m.Status)
	assert.True(t, m.AcceptedByTutor)
	assert.False(t, m.AcceptedByMentee)
	assert.Nil(t, m.AcceptedAt)
}

func TestApplyAccept_BothSidesFlipOnce(t *testing.T) {
	m := pendingMatch()
	now := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

	flipped, err := m.ApplyAccept(20, domain.RoleMentee, now)
	require.NoError(t, err)
	assert.False(t, flipped)

	flipped, err = m.ApplyAccept(10, domain.RoleTutor, now)
	require.NoError(t, err)
	assert.True(t, flipped, "second acceptance flips the status")
	assert.Equal(t, domain.MatchStatusAccepted, m.Status)
	require.NotNil(t, m.AcceptedAt)
	assert.Equal(t, now, *m.AcceptedAt)

	// A third call finds the match no longer pending.
	_, err = m.ApplyAccept(10, domain.RoleTutor, now)
	assert.Error(t, err)
}

func TestApplyAccept_UnknownRole(t *testing.T) {
	m := pendingMatch()

	_, err := m.ApplyAccept(10, "COORDINATOR", time.Now())
	assert.ErrorIs(t, err, ErrUnknownAcceptor)
	assert.Equal(t, domain.MatchStatusPending, m.Status)
}

func TestApplyAccept_ImpostorRejected(t *testing.T) {
	m := pendingMatch()

	// User 999 claims to be the tutor; nothing is recorded.
	_, err := m.ApplyAccept(999, domain.RoleTutor, time.Now())
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.False(t, m.AcceptedByTutor)
	assert.Equal(t, domain.MatchStatusPending, m.Status)

	// The mentee cannot accept on the tutor's behalf either.
	_, err = m.ApplyAccept(20, domain.RoleTutor, time.Now())
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.False(t, m.AcceptedByTutor)
}

func TestApplyAccept_RejectedMatch(t *testing.T) {
	m := pendingMatch()
	m.Status = domain.MatchStatusRejected

	_, err := m.ApplyAccept(10, domain.RoleTutor, time.Now())
	assert.Error(t, err)
}

func TestVerifyParty(t *testing.T) {
	m := pendingMatch()

	assert.NoError(t, m.VerifyParty(10, domain.RoleTutor))
	assert.NoError(t, m.VerifyParty(20, domain.RoleMentee))
	assert.ErrorIs(t, m.VerifyParty(20, domain.RoleTutor), ErrNotParticipant)
	assert.ErrorIs(t, m.VerifyParty(10, domain.RoleMentee), ErrNotParticipant)
	assert.ErrorIs(t, m.VerifyParty(10, "ADMIN"), ErrUnknownAcceptor)
}

func TestMatchDedupKey(t *testing.T) {
	sid := uint(5)
	assert.Equal(t, "t10:m20:s5", MatchDedupKey(10, 20, &sid))
	assert.Equal(t, "t10:m20:s0", MatchDedupKey(10, 20, nil))
}

func TestIsCrossInstitution(t *testing.T) {
	m := pendingMatch()
	assert.True(t, m.IsCrossInstitution())

	m.MenteeInstitutionID = m.TutorInstitutionID
	assert.False(t, m.IsCrossInstitution())
}
