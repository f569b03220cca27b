package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tutorhub/internal/domain"
	"tutorhub/internal/models"
	"tutorhub/internal/repository"

	"go.uber.org/zap"
)

type UserStore interface {
	GetByID(id uint) (*models.User, error)
}

type CandidateStore interface {
	ListMatchCandidates(excludeUserID uint, limit int) ([]models.MatchCandidate, error)
}

type MatchWriter interface {
	Create(m *models.Match) error
	FindActiveByTriple(tutorID, menteeUserID uint, subjectID *uint) (*models.Match, error)
}

// RankedCandidate is one scored candidate in descending-score order.
type RankedCandidate struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	InstitutionID *uint  `json:"institution_id"`
	Score         int    `json:"score"`
	Reason        string `json:"reason"`
}

// MatchResult is the outcome of algorithmic matching: either a persisted
// match plus the ranking, or suggestions only.
type MatchResult struct {
	Match      *models.Match     `json:"match,omitempty"`
	Candidates []RankedCandidate `json:"candidates"`
	Message    string            `json:"message,omitempty"`
}

// Matcher scores candidate tutors against a mentee and auto-creates a match
// when the top score clears the threshold.
type Matcher struct {
	users      UserStore
	candidates CandidateStore
	matches    MatchWriter
	log        *zap.Logger
}

func NewMatcher(users UserStore, candidates CandidateStore, matches MatchWriter, log *zap.Logger) *Matcher {
	return &Matcher{users: users, candidates: candidates, matches: matches, log: log}
}

// ScoreAndMatch ranks up to CandidatePoolSize tutors for the mentee. If the
// best score reaches AutoMatchThreshold exactly one match row is inserted;
// otherwise nothing is written and the top suggestions are returned.
func (s *Matcher) ScoreAndMatch(menteeUserID uint, requestedSubjects []uint) (*MatchResult, error) {
	mentee, err := s.getAffiliatedUser(menteeUserID, "mentee")
	if err != nil {
		return nil, err
	}

	pool, err := s.candidates.ListMatchCandidates(menteeUserID, domain.CandidatePoolSize)
	if err != nil {
		return nil, domain.Internal("candidate lookup failed", err)
	}
	if len(pool) == 0 {
		return &MatchResult{
			Candidates: []RankedCandidate{},
			Message:    "no qualifying candidates available",
		}, nil
	}

	ranked := rankCandidates(mentee, pool, requestedSubjects)

	top := ranked[0]
	if top.Score < domain.AutoMatchThreshold {
		return &MatchResult{
			Candidates: clip(ranked, domain.SuggestionLimit),
			Message:    fmt.Sprintf("top score %d below threshold %d; returning suggestions", top.Score, domain.AutoMatchThreshold),
		}, nil
	}

	var subjectID *uint
	if len(requestedSubjects) > 0 {
		sid := requestedSubjects[0]
		subjectID = &sid
	}
	var tutorInstitution uint
	if top.InstitutionID != nil {
		tutorInstitution = *top.InstitutionID
	}
	m := &models.Match{
		TutorID:             top.UserID,
		MenteeUserID:        menteeUserID,
		TutorInstitutionID:  tutorInstitution,
		MenteeInstitutionID: *mentee.InstitutionID,
		SubjectID:           subjectID,
		MatchScore:          top.Score,
		Status:              domain.MatchStatusPending,
		ProposedBy:          domain.ProposedByAlgorithm,
		MatchReason:         top.Reason,
	}
	if err := s.matches.Create(m); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, domain.Conflictf("a non-rejected match already exists for tutor %d, mentee %d", top.UserID, menteeUserID)
		}
		return nil, domain.Internal("match insert failed", err)
	}
	s.log.Info("algorithm match created",
		zap.Uint("match_id", m.ID),
		zap.Uint("tutor_id", m.TutorID),
		zap.Uint("mentee_user_id", m.MenteeUserID),
		zap.Int("score", m.MatchScore))
	return &MatchResult{Match: m, Candidates: clip(ranked, domain.SuggestionLimit)}, nil
}

// CreateManual bypasses scoring: both users must exist and be affiliated,
// and the non-rejected triple must be free.
func (s *Matcher) CreateManual(tutorID, menteeUserID uint, subjectID *uint, reason string) (*models.Match, error) {
	tutor, err := s.getAffiliatedUser(tutorID, "tutor")
	if err != nil {
		return nil, err
	}
	mentee, err := s.getAffiliatedUser(menteeUserID, "mentee")
	if err != nil {
		return nil, err
	}

	if existing, err := s.matches.FindActiveByTriple(tutorID, menteeUserID, subjectID); err == nil && existing != nil {
		return nil, domain.Conflictf("match %d already exists for this tutor, mentee and subject", existing.ID)
	} else if err != nil && !isRecordNotFound(err) {
		return nil, domain.Internal("match lookup failed", err)
	}

	m := &models.Match{
		TutorID:             tutorID,
		MenteeUserID:        menteeUserID,
		TutorInstitutionID:  *tutor.InstitutionID,
		MenteeInstitutionID: *mentee.InstitutionID,
		SubjectID:           subjectID,
		Status:              domain.MatchStatusPending,
		ProposedBy:          domain.ProposedByManual,
		MatchReason:         reason,
	}
	if err := s.matches.Create(m); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// Lost the check-then-insert race; the constraint caught it.
			return nil, domain.Conflictf("match already exists for this tutor, mentee and subject")
		}
		return nil, domain.Internal("match insert failed", err)
	}
	s.log.Info("manual match created",
		zap.Uint("match_id", m.ID),
		zap.Uint("tutor_id", tutorID),
		zap.Uint("mentee_user_id", menteeUserID))
	return m, nil
}

func (s *Matcher) getAffiliatedUser(id uint, label string) (*models.User, error) {
	u, err := s.users.GetByID(id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, domain.NotFoundf("%s %d not found", label, id)
		}
		return nil, domain.Internal("user lookup failed", err)
	}
	if !u.IsAffiliated() {
		return nil, domain.NotFoundf("%s %d has no institution affiliation", label, id)
	}
	return u, nil
}

// rankCandidates scores each candidate and sorts descending. The sort is
// stable so equal scores keep candidate-query order.
func rankCandidates(mentee *models.User, pool []models.MatchCandidate, requested []uint) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(pool))
	for _, cand := range pool {
		score, reason := scoreCandidate(mentee, cand, requested)
		ranked = append(ranked, RankedCandidate{
			UserID:        cand.UserID,
			Username:      cand.Username,
			InstitutionID: cand.InstitutionID,
			Score:         score,
			Reason:        reason,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// scoreCandidate accumulates the independent additive factors.
func scoreCandidate(mentee *models.User, cand models.MatchCandidate, requested []uint) (int, string) {
	score := 0
	var parts []string

	if cand.InstitutionID != nil && mentee.InstitutionID != nil && *cand.InstitutionID != *mentee.InstitutionID {
		score += domain.ScoreCrossInstitution
		parts = append(parts, "cross-institution")
	}
	if mentee.AcademicYear != 0 && cand.AcademicYear == mentee.AcademicYear {
		score += domain.ScoreSameAcademicYear
		parts = append(parts, "same academic year")
	}
	if len(requested) > 0 && len(cand.PreferredSubjects) > 0 {
		overlap := countOverlap(requested, cand.PreferredSubjects)
		if overlap > 0 {
			score += domain.ScorePerSharedSubject * overlap
			parts = append(parts, fmt.Sprintf("%d shared subject(s)", overlap))
		}
	}
	if cand.OnlineOnly {
		score += domain.ScoreOnlineOnly
		parts = append(parts, "online-only tutor")
	}

	if len(parts) == 0 {
		return score, fmt.Sprintf("no matching factors (score %d)", score)
	}
	return score, fmt.Sprintf("%s (score %d)", strings.Join(parts, ", "), score)
}

func countOverlap(requested, preferred []uint) int {
	set := make(map[uint]struct{}, len(preferred))
	for _, id := range preferred {
		set[id] = struct{}{}
	}
	n := 0
	for _, id := range requested {
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}

func clip(ranked []RankedCandidate, n int) []RankedCandidate {
	if len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}
