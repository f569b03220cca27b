package handler

import (
	"net/http"
	"strconv"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
)

type PreferenceStore interface {
	GetByUserID(userID uint) (*models.MatchingPreferences, error)
	Upsert(p *models.MatchingPreferences) error
}

type PreferenceHandler struct {
	prefs PreferenceStore
	users service.UserStore
}

func NewPreferenceHandler(prefs PreferenceStore, users service.UserStore) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs, users: users}
}

type preferencesView struct {
	UserID               uint   `json:"user_id"`
	IsActive             bool   `json:"is_active"`
	PreferRemoteStudents bool   `json:"prefer_remote_students"`
	PreferredSubjects    []uint `json:"preferred_subjects"`
	OnlineOnly           bool   `json:"online_only"`
}

func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.prefs.GetByUserID(userID)
	if err != nil {
		if isGormNotFound(err) {
			// No row yet reads as an inactive default, not an error.
			c.JSON(http.StatusOK, preferencesView{UserID: userID, PreferredSubjects: []uint{}})
			return
		}
		respondError(c, domain.Internal("preference lookup failed", err))
		return
	}
	c.JSON(http.StatusOK, toView(p))
}

func (h *PreferenceHandler) Put(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req struct {
		IsActive             bool   `json:"is_active"`
		PreferRemoteStudents bool   `json:"prefer_remote_students"`
		PreferredSubjects    []uint `json:"preferred_subjects"`
		OnlineOnly           bool   `json:"online_only"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	if _, err := h.users.GetByID(userID); err != nil {
		if isGormNotFound(err) {
			respondError(c, domain.NotFoundf("user %d not found", userID))
			return
		}
		respondError(c, domain.Internal("user lookup failed", err))
		return
	}
	p := &models.MatchingPreferences{
		UserID:               userID,
		IsActive:             req.IsActive,
		PreferRemoteStudents: req.PreferRemoteStudents,
		OnlineOnly:           req.OnlineOnly,
	}
	p.SetSubjectIDs(req.PreferredSubjects)
	if err := h.prefs.Upsert(p); err != nil {
		respondError(c, domain.Internal("preference save failed", err))
		return
	}
	c.JSON(http.StatusOK, toView(p))
}

func toView(p *models.MatchingPreferences) preferencesView {
	subjects := p.SubjectIDs()
	if subjects == nil {
		subjects = []uint{}
	}
	return preferencesView{
		UserID:               p.UserID,
		IsActive:             p.IsActive,
		PreferRemoteStudents: p.PreferRemoteStudents,
		PreferredSubjects:    subjects,
		OnlineOnly:           p.OnlineOnly,
	}
}

func pathUserID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validationf("invalid user id %q", c.Param("userId"))
	}
	return uint(id), nil
}
