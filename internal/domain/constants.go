package domain

const (
	RoleStudent     = "STUDENT"
	RoleTutor       = "TUTOR"
	RoleMentee      = "MENTEE"
	RoleCoordinator = "COORDINATOR"
	RoleReviewer    = "REVIEWER"
)

const (
	MatchStatusPending   = "PENDING"
	MatchStatusAccepted  = "ACCEPTED"
	MatchStatusRejected  = "REJECTED"
	MatchStatusCompleted = "COMPLETED"
)

const (
	ProposedByManual    = "MANUAL"
	ProposedByAlgorithm = "ALGORITHM"
)

const (
	CreditStatusPending  = "PENDING"
	CreditStatusApproved = "APPROVED"
	CreditStatusCredited = "CREDITED"
	CreditStatusRejected = "REJECTED"
)

const (
	AdjustmentTypeBonus     = "BONUS"
	AdjustmentTypeDeduction = "DEDUCTION"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// Scoring weights for algorithmic matching. Factors are additive and never
// normalized; cross-institution pairing is the platform's impact signal.
const (
	ScoreCrossInstitution = 30
	ScoreSameAcademicYear = 10
	ScorePerSharedSubject = 20
	ScoreOnlineOnly       = 5
)

const (
	// CandidatePoolSize caps the scorer's candidate query; results are a
	// best-effort sample, not an exhaustive search.
	CandidatePoolSize = 10

	// AutoMatchThreshold is the minimum top score that persists a match.
	AutoMatchThreshold = 30

	// SuggestionLimit is how many ranked candidates are returned when no
	// match is auto-created.
	SuggestionLimit = 5
)
