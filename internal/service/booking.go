package service

import (
	"errors"
	"time"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BookingStore interface {
	GetByID(id uint) (*models.Booking, error)
	Complete(id uint, c repository.SessionCompletion) (*models.Booking, error)
}

type MatchReader interface {
	GetByID(id uint) (*models.Match, error)
}

// BookingService handles session-completion bookkeeping: the booking status
// flip, the match's session counters, and credit submission for
// cross-institution sessions.
type BookingService struct {
	bookings         BookingStore
	matches          MatchReader
	users            UserStore
	creditPerSession decimal.Decimal
	log              *zap.Logger
}

func NewBookingService(bookings BookingStore, matches MatchReader, users UserStore, creditPerSession decimal.Decimal, log *zap.Logger) *BookingService {
	return &BookingService{
		bookings:         bookings,
		matches:          matches,
		users:            users,
		creditPerSession: creditPerSession,
		log:              log,
	}
}

// CompleteSession marks the booking completed, bumps the linked match's
// counters (impact doubles for cross-institution sessions) and submits a
// pending credit transaction when the session crossed institutions. All
// writes land in one store transaction, so a failed call leaves the booking
// retryable with nothing half-applied.
func (s *BookingService) CompleteSession(bookingID uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, domain.NotFoundf("booking %d not found", bookingID)
		}
		return nil, domain.Internal("booking lookup failed", err)
	}

	var completion repository.SessionCompletion
	if b.MatchID != nil {
		m, err := s.matches.GetByID(*b.MatchID)
		if err != nil {
			return nil, domain.Internal("match lookup failed", err)
		}
		completion.MatchID = b.MatchID
		completion.ImpactDelta = 1
		if m.IsCrossInstitution() {
			completion.ImpactDelta = 2
			tutor, err := s.users.GetByID(b.TutorID)
			if err != nil {
				return nil, domain.Internal("tutor lookup failed", err)
			}
			if tutor.IsAffiliated() {
				completion.Credit = models.NewPendingCredit(b.TutorID, *tutor.InstitutionID, b.ID, s.creditPerSession, time.Now())
			}
		}
	}

	done, err := s.bookings.Complete(bookingID, completion)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, domain.NotFoundf("booking %d not found", bookingID)
		}
		if errors.Is(err, repository.ErrInvalidState) {
			return nil, domain.Conflictf("booking %d cannot be completed from its current status", bookingID)
		}
		return nil, domain.Internal("booking completion failed", err)
	}
	if completion.Credit != nil {
		s.log.Info("cross-institution credit submitted",
			zap.Uint("booking_id", done.ID),
			zap.Uint("credit_id", completion.Credit.ID),
			zap.Uint("tutor_id", done.TutorID))
	}
	return done, nil
}
