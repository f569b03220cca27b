package handler

import (
	"net/http"
	"strconv"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"
	"tutorhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BookingWriter interface {
	Create(b *models.Booking) error
	List(f repository.BookingFilters) ([]models.Booking, error)
}

type BookingHandler struct {
	bookings BookingWriter
	svc      *service.BookingService
}

func NewBookingHandler(bookings BookingWriter, svc *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings, svc: svc}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req struct {
		TutorID     uint       `json:"tutor_id" binding:"required"`
		StudentID   uint       `json:"student_id" binding:"required"`
		SubjectID   *uint      `json:"subject_id"`
		MatchID     *uint      `json:"match_id"`
		Price       string     `json:"price" binding:"required"`
		Currency    string     `json:"currency"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		respondError(c, domain.Validationf("price %q is not a valid non-negative decimal", req.Price))
		return
	}
	b := &models.Booking{
		TutorID:     req.TutorID,
		StudentID:   req.StudentID,
		SubjectID:   req.SubjectID,
		MatchID:     req.MatchID,
		Price:       price,
		Currency:    req.Currency,
		Status:      domain.BookingStatusPending,
		ScheduledAt: req.ScheduledAt,
	}
	if err := h.bookings.Create(b); err != nil {
		respondError(c, domain.Internal("booking insert failed", err))
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) List(c *gin.Context) {
	tutorID, _ := strconv.ParseUint(c.Query("tutorId"), 10, 32)
	studentID, _ := strconv.ParseUint(c.Query("studentId"), 10, 32)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.bookings.List(repository.BookingFilters{
		TutorID:   uint(tutorID),
		StudentID: uint(studentID),
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, domain.Internal("booking list failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

// Complete marks a session done and runs the downstream bookkeeping (match
// counters, cross-institution credit submission).
func (h *BookingHandler) Complete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	b, err := h.svc.CompleteSession(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
