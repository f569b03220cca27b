package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
)

// CreditLister is the read-side slice of the credit repository.
type CreditLister interface {
	List(f repository.CreditFilters) ([]models.CreditTransaction, error)
}

type CreditHandler struct {
	credits CreditLister
	svc     *service.CreditService
}

func NewCreditHandler(credits CreditLister, svc *service.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits, svc: svc}
}

// List returns credit transactions filtered by user, institution and status.
func (h *CreditHandler) List(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("userId"), 10, 32)
	institutionID, _ := strconv.ParseUint(c.Query("institutionId"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.credits.List(repository.CreditFilters{
		UserID:        uint(userID),
		InstitutionID: uint(institutionID),
		Status:        c.Query("status"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		respondError(c, domain.Internal("credit list failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": list})
}

type reviewRequest struct {
	ReviewerID  uint   `json:"reviewer_id" binding:"required"`
	ReviewNotes string `json:"review_notes"`
}

func (h *CreditHandler) Approve(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	ct, err := h.svc.Approve(id, req.ReviewerID, req.ReviewNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *CreditHandler) Reject(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	ct, err := h.svc.Reject(id, req.ReviewerID, req.ReviewNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

// Credit applies an approved transaction to the user's balance. Idempotent
// per transaction id: a repeat call returns a conflict without re-crediting.
func (h *CreditHandler) Credit(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	ct, err := h.svc.Credit(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

// Balance returns the running credit balance for a user and academic year.
func (h *CreditHandler) Balance(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("userId"), 10, 32)
	if userID == 0 {
		respondError(c, domain.Validationf("userId is required"))
		return
	}
	year := c.Query("academicYear")
	if year == "" {
		year = models.AcademicYearOf(time.Now())
	}
	bal, err := h.svc.Balance(uint(userID), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// ExportCSV streams the filtered credit transactions as CSV for reviewers.
func (h *CreditHandler) ExportCSV(c *gin.Context) {
	institutionID, _ := strconv.ParseUint(c.Query("institutionId"), 10, 32)
	list, err := h.credits.List(repository.CreditFilters{
		InstitutionID: uint(institutionID),
		Status:        c.Query("status"),
		Limit:         10000,
	})
	if err != nil {
		respondError(c, domain.Internal("credit export failed", err))
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="credit_transactions.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "user_id", "institution_id", "booking_id", "credits_earned", "academic_year", "status", "submitted_at", "reviewed_at", "credited_at"})
	for _, ct := range list {
		reviewed, credited := "", ""
		if ct.ReviewedAt != nil {
			reviewed = ct.ReviewedAt.Format(time.RFC3339)
		}
		if ct.CreditedAt != nil {
			credited = ct.CreditedAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			fmt.Sprint(ct.ID),
			fmt.Sprint(ct.UserID),
			fmt.Sprint(ct.InstitutionID),
			fmt.Sprint(ct.BookingID),
			ct.CreditsEarned.StringFixed(2),
			ct.AcademicYear,
			ct.Status,
			ct.SubmittedAt.Format(time.RFC3339),
			reviewed,
			credited,
		})
	}
	w.Flush()
}
