package service

import (
	"tutorhub/internal/domain"
	"tutorhub/internal/models"

	"github.com/shopspring/decimal"
)

type BookingLister interface {
	ListByTutor(tutorID uint) ([]models.Booking, error)
}

type AdjustmentLister interface {
	ListByTutor(tutorID uint) ([]models.EarningsAdjustment, error)
}

// EarningsSummary is the read-side aggregation for one tutor. All amounts
// are fixed-point decimals; nothing is cached.
type EarningsSummary struct {
	TutorID           uint            `json:"tutor_id"`
	TotalFromBookings decimal.Decimal `json:"total_from_bookings"`
	TotalAdjustments  decimal.Decimal `json:"total_adjustments"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
}

type EarningsService struct {
	bookings    BookingLister
	adjustments AdjustmentLister
}

func NewEarningsService(bookings BookingLister, adjustments AdjustmentLister) *EarningsService {
	return &EarningsService{bookings: bookings, adjustments: adjustments}
}

// ComputeEarnings sums completed-booking prices and signed adjustments,
// recomputed on every call.
func (s *EarningsService) ComputeEarnings(tutorID uint) (*EarningsSummary, error) {
	bookings, err := s.bookings.ListByTutor(tutorID)
	if err != nil {
		return nil, domain.Internal("booking aggregation failed", err)
	}
	fromBookings := decimal.Zero
	for _, b := range bookings {
		if b.Status == domain.BookingStatusCompleted {
			fromBookings = fromBookings.Add(b.Price)
		}
	}

	adjustments, err := s.adjustments.ListByTutor(tutorID)
	if err != nil {
		return nil, domain.Internal("adjustment aggregation failed", err)
	}
	adjTotal := decimal.Zero
	for _, a := range adjustments {
		adjTotal = adjTotal.Add(a.SignedAmount())
	}

	return &EarningsSummary{
		TutorID:           tutorID,
		TotalFromBookings: fromBookings,
		TotalAdjustments:  adjTotal,
		TotalEarnings:     fromBookings.Add(adjTotal),
	}, nil
}
