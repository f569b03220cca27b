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

type ReviewStore interface {
	Create(rev *models.Review) error
	ListByTutor(tutorID uint, limit, offset int) ([]models.Review, error)
	AverageRating(tutorID uint) (float64, error)
}

type ReviewHandler struct {
	reviews  ReviewStore
	bookings service.BookingStore
}

func NewReviewHandler(reviews ReviewStore, bookings service.BookingStore) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, bookings: bookings}
}

// Create records a student's review for a completed booking, one per booking.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req struct {
		BookingID uint   `json:"booking_id" binding:"required"`
		StudentID uint   `json:"student_id" binding:"required"`
		Rating    int    `json:"rating" binding:"required,min=1,max=5"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.Validationf("invalid request: %s", err.Error()))
		return
	}
	b, err := h.bookings.GetByID(req.BookingID)
	if err != nil {
		if isGormNotFound(err) {
			respondError(c, domain.NotFoundf("booking %d not found", req.BookingID))
			return
		}
		respondError(c, domain.Internal("booking lookup failed", err))
		return
	}
	if b.Status != domain.BookingStatusCompleted {
		respondError(c, domain.Conflictf("booking %d is not completed", b.ID))
		return
	}
	if b.StudentID != req.StudentID {
		respondError(c, domain.Validationf("student %d did not attend booking %d", req.StudentID, b.ID))
		return
	}
	rev := &models.Review{
		BookingID: req.BookingID,
		StudentID: req.StudentID,
		TutorID:   b.TutorID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.reviews.Create(rev); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			respondError(c, domain.Conflictf("booking %d already has a review", req.BookingID))
			return
		}
		respondError(c, domain.Internal("review insert failed", err))
		return
	}
	c.JSON(http.StatusCreated, rev)
}

func (h *ReviewHandler) List(c *gin.Context) {
	tutorID, _ := strconv.ParseUint(c.Query("tutorId"), 10, 32)
	if tutorID == 0 {
		respondError(c, domain.Validationf("tutorId is required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.reviews.ListByTutor(uint(tutorID), limit, offset)
	if err != nil {
		respondError(c, domain.Internal("review list failed", err))
		return
	}
	avg, err := h.reviews.AverageRating(uint(tutorID))
	if err != nil {
		respondError(c, domain.Internal("rating aggregation failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list, "average_rating": avg})
}
