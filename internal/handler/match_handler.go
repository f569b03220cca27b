package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
)

// MatchStore is the handler-facing slice of the match repository.
type MatchStore interface {
	List(f repository.MatchFilters) ([]models.Match, error)
	Accept(id, userID uint, role string) (*models.Match, error)
	Reject(id, userID uint, role, reason string) (*models.Match, error)
	Complete(id uint) (*models.Match, error)
}

type MatchHandler struct {
	matches MatchStore
	matcher *service.Matcher
}

func NewMatchHandler(matches MatchStore, matcher *service.Matcher) *MatchHandler {
	return &MatchHandler{matches: matches, matcher: matcher}
}

// List returns matches newest first, filtered by user/role/status.
func (h *MatchHandler) List(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("userId"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.matches.List(repository.MatchFilters{
		UserID: uint(userID),
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, domain.Internal("match list failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// Create runs either manual match creation or the scoring algorithm,
// selected by mode.
func (h *MatchHandler) Create(c *gin.Context) {
	var req struct {
		Mode              string `json:"mode" binding:"required,oneof=manual algorithm"`
		TutorID           uint   `json:"tutor_id"`
		MenteeUserID      uint   `json:"mentee_user_id" binding:"required"`
		SubjectID         *uint  `json:"subject_id"`
		RequestedSubjects []uint `json:"requested_subjects"`
		MatchReason       string `json:"match_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}

	if req.Mode == "manual" {
		if req.TutorID == 0 {
			respondError(c, domain.Validationf("tutor_id is required for manual matches"))
			return
		}
		m, err := h.matcher.CreateManual(req.TutorID, req.MenteeUserID, req.SubjectID, req.MatchReason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, m)
		return
	}

	result, err := h.matcher.ScoreAndMatch(req.MenteeUserID, req.RequestedSubjects)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if result.Match != nil {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// Accept records one party's acceptance; the match becomes ACCEPTED once the
// second party has also accepted. The caller must actually hold the claimed
// role on the match.
func (h *MatchHandler) Accept(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required,oneof=TUTOR MENTEE"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	m, err := h.matches.Accept(id, req.UserID, req.Role)
	if err != nil {
		respondError(c, translateTransition(err, "match", id, domain.MatchStatusPending))
		return
	}
	c.JSON(http.StatusOK, m)
}

// Reject is terminal and one-shot; either party may reject with a reason.
func (h *MatchHandler) Reject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req struct {
		UserID          uint   `json:"user_id" binding:"required"`
		Role            string `json:"role" binding:"required,oneof=TUTOR MENTEE"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	m, err := h.matches.Reject(id, req.UserID, req.Role, req.RejectionReason)
	if err != nil {
		respondError(c, translateTransition(err, "match", id, domain.MatchStatusPending))
		return
	}
	c.JSON(http.StatusOK, m)
}

// Complete transitions an accepted match to completed (coordinator action).
func (h *MatchHandler) Complete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	m, err := h.matches.Complete(id)
	if err != nil {
		respondError(c, translateTransition(err, "match", id, domain.MatchStatusAccepted))
		return
	}
	c.JSON(http.StatusOK, m)
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validationf("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

// translateTransition maps store errors from conditional transitions to the
// API taxonomy.
func translateTransition(err error, entity string, id uint, expected string) error {
	switch {
	case errors.Is(err, repository.ErrInvalidState):
		return domain.Conflictf("%s %d is not %s", entity, id, expected)
	case errors.Is(err, models.ErrUnknownAcceptor), errors.Is(err, models.ErrNotParticipant):
		return domain.Validationf("%s", err.Error())
	case isGormNotFound(err):
		return domain.NotFoundf("%s %d not found", entity, id)
	default:
		return domain.Internal(entity+" transition failed", err)
	}
}
