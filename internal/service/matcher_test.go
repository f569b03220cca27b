package service

import (
	"testing"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userStoreStub struct {
	users map[uint]*models.User
}

func (s *userStoreStub) GetByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type candidateStoreStub struct {
	pool []models.MatchCandidate
}

func (s *candidateStoreStub) ListMatchCandidates(excludeUserID uint, limit int) ([]models.MatchCandidate, error) {
	if len(s.pool) > limit {
		return s.pool[:limit], nil
	}
	return s.pool, nil
}

type matchWriterStub struct {
	created   []*models.Match
	createErr error
	existing  *models.Match
}

func (s *matchWriterStub) Create(m *models.Match) error {
	if s.createErr != nil {
		return s.createErr
	}
	m.ID = uint(len(s.created) + 1)
	s.created = append(s.created, m)
	return nil
}

func (s *matchWriterStub) FindActiveByTriple(tutorID, menteeUserID uint, subjectID *uint) (*models.Match, error) {
	if s.existing != nil {
		return s.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func uintPtr(v uint) *uint { return &v }

func newTestMatcher(users *userStoreStub, candidates *candidateStoreStub, matches *matchWriterStub) *Matcher {
	return NewMatcher(users, candidates, matches, zap.NewNop())
}

func affiliatedUser(id, institution uint, year int) *models.User {
	return &models.User{ID: id, InstitutionID: uintPtr(institution), AcademicYear: year}
}

func TestScoreAndMatch_MenteeNotFound(t *testing.T) {
	matches := &matchWriterStub{}
	m := newTestMatcher(&userStoreStub{users: map[uint]*models.User{}}, &candidateStoreStub{}, matches)

	_, err := m.ScoreAndMatch(42, nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	assert.Empty(t, matches.created, "no writes on failure")
}

func TestScoreAndMatch_UnaffiliatedMentee(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: {ID: 7}}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, &candidateStoreStub{}, matches)

	_, err := m.ScoreAndMatch(7, nil)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	assert.Empty(t, matches.created)
}

func TestScoreAndMatch_EmptyPool(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: affiliatedUser(7, 1, 2)}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, &candidateStoreStub{}, matches)

	res, err := m.ScoreAndMatch(7, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, "no qualifying candidates available", res.Message)
	assert.Empty(t, matches.created)
}

func TestScoreAndMatch_CrossInstitutionScoresExactlyThirty(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: affiliatedUser(7, 1, 0)}}
	candidates := &candidateStoreStub{pool: []models.MatchCandidate{
		{UserID: 10, InstitutionID: uintPtr(2)}, // cross-institution, nothing else
		{UserID: 11, InstitutionID: uintPtr(1)}, // same institution, nothing else
	}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, candidates, matches)

	res, err := m.ScoreAndMatch(7, nil)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, 30, res.Candidates[0].Score)
	assert.Equal(t, uint(10), res.Candidates[0].UserID)
	assert.Equal(t, 0, res.Candidates[1].Score)

	// Exactly 30 clears the threshold and persists a match.
	require.NotNil(t, res.Match)
	assert.Equal(t, domain.ProposedByAlgorithm, res.Match.ProposedBy)
	assert.Equal(t, domain.MatchStatusPending, res.Match.Status)
	assert.Equal(t, 30, res.Match.MatchScore)
	assert.Len(t, matches.created, 1)
}

func TestScoreAndMatch_BelowThresholdSuggestsOnly(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: affiliatedUser(7, 1, 0)}}
	// Same institution, shared subject + online-only: 20 + 5 = 25 < 30.
	candidates := &candidateStoreStub{pool: []models.MatchCandidate{
		{UserID: 10, InstitutionID: uintPtr(1), PreferredSubjects: []uint{3}, OnlineOnly: true},
	}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, candidates, matches)

	res, err := m.ScoreAndMatch(7, []uint{3})
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, 25, res.Candidates[0].Score)
	assert.Empty(t, matches.created, "no writes below threshold")
}

func TestScoreAndMatch_SubjectOverlapIsPerSubject(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: affiliatedUser(7, 1, 3)}}
	candidates := &candidateStoreStub{pool: []models.MatchCandidate{
		{UserID: 10, InstitutionID: uintPtr(2), AcademicYear: 3, PreferredSubjects: []uint{3, 4, 5}, OnlineOnly: true},
	}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, candidates, matches)

	res, err := m.ScoreAndMatch(7, []uint{3, 4, 9})
	require.NoError(t, err)
	// 30 cross + 10 year + 2*20 subjects + 5 online = 85
	require.NotNil(t, res.Match)
	assert.Equal(t, 85, res.Match.MatchScore)
	// Subject defaults to the first requested one.
	require.NotNil(t, res.Match.SubjectID)
	assert.Equal(t, uint(3), *res.Match.SubjectID)
}

func TestScoreAndMatch_RankingIsStableForTies(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: affiliatedUser(7, 1, 0)}}
	// Two equal-score candidates in fixed input order, plus a higher one last.
	candidates := &candidateStoreStub{pool: []models.MatchCandidate{
		{UserID: 10, InstitutionID: uintPtr(2)},
		{UserID: 11, InstitutionID: uintPtr(3)},
		{UserID: 12, InstitutionID: uintPtr(2), OnlineOnly: true},
	}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, candidates, matches)

	res, err := m.ScoreAndMatch(7, nil)
	require.NoError(t, err)
	require.Len(t, res.Candidates, 3)
	assert.Equal(t, uint(12), res.Candidates[0].UserID)
	assert.Equal(t, uint(10), res.Candidates[1].UserID, "ties keep query order")
	assert.Equal(t, uint(11), res.Candidates[2].UserID)
}

func TestScoreAndMatch_SuggestionsCappedAtFive(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{7: affiliatedUser(7, 1, 0)}}
	pool := make([]models.MatchCandidate, 0, 8)
	for i := uint(10); i < 18; i++ {
		pool = append(pool, models.MatchCandidate{UserID: i, InstitutionID: uintPtr(1), OnlineOnly: true})
	}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, &candidateStoreStub{pool: pool}, matches)

	res, err := m.ScoreAndMatch(7, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Match)
	assert.Len(t, res.Candidates, domain.SuggestionLimit)
}

func TestCreateManual_HappyPath(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{
		1: affiliatedUser(1, 1, 2),
		2: affiliatedUser(2, 2, 2),
	}}
	matches := &matchWriterStub{}
	m := newTestMatcher(users, &candidateStoreStub{}, matches)

	created, err := m.CreateManual(1, 2, uintPtr(5), "coordinator pairing")
	require.NoError(t, err)
	assert.Equal(t, domain.ProposedByManual, created.ProposedBy)
	assert.Equal(t, domain.MatchStatusPending, created.Status)
	assert.True(t, created.IsCrossInstitution())
	assert.Len(t, matches.created, 1)
}

func TestCreateManual_DuplicateTripleConflicts(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{
		1: affiliatedUser(1, 1, 2),
		2: affiliatedUser(2, 2, 2),
	}}
	matches := &matchWriterStub{existing: &models.Match{ID: 9}}
	m := newTestMatcher(users, &candidateStoreStub{}, matches)

	_, err := m.CreateManual(1, 2, uintPtr(5), "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
	assert.Empty(t, matches.created)
}

func TestCreateManual_InsertRaceSurfacesConflict(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{
		1: affiliatedUser(1, 1, 2),
		2: affiliatedUser(2, 2, 2),
	}}
	matches := &matchWriterStub{createErr: repository.ErrDuplicateKey}
	m := newTestMatcher(users, &candidateStoreStub{}, matches)

	_, err := m.CreateManual(1, 2, uintPtr(5), "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestCreateManual_UnaffiliatedTutor(t *testing.T) {
	users := &userStoreStub{users: map[uint]*models.User{
		1: {ID: 1},
		2: affiliatedUser(2, 2, 2),
	}}
	m := newTestMatcher(users, &candidateStoreStub{}, &matchWriterStub{})

	_, err := m.CreateManual(1, 2, uintPtr(5), "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}
