package handler

import (
	"net/http"
	"strconv"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdjustmentStore interface {
	Create(a *models.EarningsAdjustment) error
	ListByTutor(tutorID uint) ([]models.EarningsAdjustment, error)
}

type EarningsHandler struct {
	earnings    *service.EarningsService
	adjustments AdjustmentStore
	users       service.UserStore
}

func NewEarningsHandler(earnings *service.EarningsService, adjustments AdjustmentStore, users service.UserStore) *EarningsHandler {
	return &EarningsHandler{earnings: earnings, adjustments: adjustments, users: users}
}

// Get returns the aggregated earnings object for a tutor.
func (h *EarningsHandler) Get(c *gin.Context) {
	tutorID, _ := strconv.ParseUint(c.Query("tutorId"), 10, 32)
	if tutorID == 0 {
		respondError(c, domain.Validationf("tutorId is required"))
		return
	}
	summary, err := h.earnings.ComputeEarnings(uint(tutorID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreateAdjustment records a manual bonus or deduction. The amount is stored
// unsigned; the sign comes from the type at aggregation time.
func (h *EarningsHandler) CreateAdjustment(c *gin.Context) {
	var req struct {
		TutorID   uint   `json:"tutor_id" binding:"required"`
		Amount    string `json:"amount" binding:"required"`
		Type      string `json:"type" binding:"required,oneof=BONUS DEDUCTION"`
		Reason    string `json:"reason" binding:"required"`
		CreatedBy uint   `json:"created_by" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(c, domain.Validationf("amount %q is not a valid decimal", req.Amount))
		return
	}
	if amount.IsNegative() || amount.IsZero() {
		respondError(c, domain.Validationf("amount must be positive; use type DEDUCTION for deductions"))
		return
	}
	if _, err := h.users.GetByID(req.TutorID); err != nil {
		if isGormNotFound(err) {
			respondError(c, domain.NotFoundf("tutor %d not found", req.TutorID))
			return
		}
		respondError(c, domain.Internal("tutor lookup failed", err))
		return
	}
	a := &models.EarningsAdjustment{
		TutorID:   req.TutorID,
		Amount:    amount,
		Type:      req.Type,
		Reason:    req.Reason,
		CreatedBy: req.CreatedBy,
	}
	if err := h.adjustments.Create(a); err != nil {
		respondError(c, domain.Internal("adjustment insert failed", err))
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *EarningsHandler) ListAdjustments(c *gin.Context) {
	tutorID, _ := strconv.ParseUint(c.Query("tutorId"), 10, 32)
	if tutorID == 0 {
		respondError(c, domain.Validationf("tutorId is required"))
		return
	}
	list, err := h.adjustments.ListByTutor(uint(tutorID))
	if err != nil {
		respondError(c, domain.Internal("adjustment list failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"adjustments": list})
}
