package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type matchStoreStub struct {
	match     *models.Match
	acceptErr error
}

func (s *matchStoreStub) List(f repository.MatchFilters) ([]models.Match, error) {
	if s.match == nil {
		return []models.Match{}, nil
	}
	return []models.Match{*s.match}, nil
}

func (s *matchStoreStub) Accept(id, userID uint, role string) (*models.Match, error) {
	if s.acceptErr != nil {
		return nil, s.acceptErr
	}
	if s.match == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if _, err := s.match.ApplyAccept(userID, role, time.Now()); err != nil {
		return nil, err
	}
	return s.match, nil
}

func (s *matchStoreStub) Reject(id, userID uint, role, reason string) (*models.Match, error) {
	if s.acceptErr != nil {
		return nil, s.acceptErr
	}
	if s.match == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if err := s.match.VerifyParty(userID, role); err != nil {
		return nil, err
	}
	return s.match, nil
}

func (s *matchStoreStub) Complete(id uint) (*models.Match, error) {
	if s.acceptErr != nil {
		return nil, s.acceptErr
	}
	return s.match, nil
}

type handlerUserStub struct{ users map[uint]*models.User }

func (s *handlerUserStub) GetByID(id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type handlerCandidateStub struct{}

func (handlerCandidateStub) ListMatchCandidates(excludeUserID uint, limit int) ([]models.MatchCandidate, error) {
	return nil, nil
}

type handlerMatchWriterStub struct{ created int }

func (s *handlerMatchWriterStub) Create(m *models.Match) error {
	s.created++
	m.ID = uint(s.created)
	return nil
}

func (s *handlerMatchWriterStub) FindActiveByTriple(tutorID, menteeUserID uint, subjectID *uint) (*models.Match, error) {
	return nil, gorm.ErrRecordNotFound
}

func newMatchRouter(store *matchStoreStub, users *handlerUserStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	matcher := service.NewMatcher(users, handlerCandidateStub{}, &handlerMatchWriterStub{}, zap.NewNop())
	h := NewMatchHandler(store, matcher)
	r := gin.New()
	r.GET("/matches", h.List)
	r.POST("/matches", h.Create)
	r.POST("/matches/:id/accept", h.Accept)
	r.POST("/matches/:id/reject", h.Reject)
	return r
}

func pendingTestMatch() *models.Match {
	return &models.Match{
		ID:                  1,
		TutorID:             10,
		MenteeUserID:        20,
		TutorInstitutionID:  1,
		MenteeInstitutionID: 2,
		Status:              domain.MatchStatusPending,
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func institution(id uint) *uint { return &id }

func TestMatchCreate_MissingMode(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches", `{"mentee_user_id": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.CodeValidation)
}

func TestMatchCreate_ManualRequiresTutor(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches", `{"mode":"manual","mentee_user_id": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchCreate_Manual(t *testing.T) {
	users := &handlerUserStub{users: map[uint]*models.User{
		1: {ID: 1, InstitutionID: institution(1)},
		2: {ID: 2, InstitutionID: institution(2)},
	}}
	r := newMatchRouter(&matchStoreStub{}, users)

	w := doJSON(t, r, http.MethodPost, "/matches", `{"mode":"manual","tutor_id":1,"mentee_user_id":2}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"proposed_by":"MANUAL"`)
}

func TestMatchCreate_AlgorithmEmptyPool(t *testing.T) {
	users := &handlerUserStub{users: map[uint]*models.User{
		2: {ID: 2, InstitutionID: institution(2)},
	}}
	r := newMatchRouter(&matchStoreStub{}, users)

	w := doJSON(t, r, http.MethodPost, "/matches", `{"mode":"algorithm","mentee_user_id":2}`)
	assert.Equal(t, http.StatusOK, w.Code, "no match created, suggestions only")
	assert.Contains(t, w.Body.String(), "no qualifying candidates available")
}

func TestMatchAccept_ByParty(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{match: pendingTestMatch()}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches/1/accept", `{"user_id":10,"role":"TUTOR"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accepted_by_tutor":true`)
}

func TestMatchAccept_ActorNotOnMatch(t *testing.T) {
	store := &matchStoreStub{match: pendingTestMatch()}
	r := newMatchRouter(store, &handlerUserStub{})

	// A stranger naming the tutor role must be refused with nothing recorded.
	w := doJSON(t, r, http.MethodPost, "/matches/1/accept", `{"user_id":999,"role":"TUTOR"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.CodeValidation)
	assert.False(t, store.match.AcceptedByTutor)

	// The mentee cannot act as the tutor either.
	w = doJSON(t, r, http.MethodPost, "/matches/1/accept", `{"user_id":20,"role":"TUTOR"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, store.match.AcceptedByTutor)
}

func TestMatchReject_ActorNotOnMatch(t *testing.T) {
	store := &matchStoreStub{match: pendingTestMatch()}
	r := newMatchRouter(store, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches/1/reject", `{"user_id":999,"role":"MENTEE","rejection_reason":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.CodeValidation)
}

func TestMatchAccept_InvalidRole(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches/1/accept", `{"user_id":1,"role":"COORDINATOR"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchAccept_WrongState(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{acceptErr: repository.ErrInvalidState}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches/1/accept", `{"user_id":1,"role":"TUTOR"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), domain.CodeConflict)
}

func TestMatchAccept_NotFound(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{acceptErr: gorm.ErrRecordNotFound}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches/1/accept", `{"user_id":1,"role":"TUTOR"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMatchAccept_BadID(t *testing.T) {
	r := newMatchRouter(&matchStoreStub{}, &handlerUserStub{})

	w := doJSON(t, r, http.MethodPost, "/matches/abc/accept", `{"user_id":1,"role":"TUTOR"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
