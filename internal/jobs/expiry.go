package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MatchExpirer rejects pending matches created before the cutoff.
type MatchExpirer interface {
	ExpireStalePending(olderThan time.Time, reason string) (int64, error)
}

const expiryReason = "expired: no response within the acceptance window"

// ExpiryJob sweeps stale pending matches so the other party is freed up for
// re-matching.
type ExpiryJob struct {
	matches MatchExpirer
	ttl     time.Duration
	log     *zap.Logger
}

func NewExpiryJob(matches MatchExpirer, ttl time.Duration, log *zap.Logger) *ExpiryJob {
	return &ExpiryJob{matches: matches, ttl: ttl, log: log}
}

// Run implements cron.Job.
func (j *ExpiryJob) Run() {
	cutoff := time.Now().Add(-j.ttl)
	n, err := j.matches.ExpireStalePending(cutoff, expiryReason)
	if err != nil {
		j.log.Error("match expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		j.log.Info("expired stale pending matches", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}

// Schedule registers the job on the cron runner.
func Schedule(c *cron.Cron, spec string, j *ExpiryJob) (cron.EntryID, error) {
	return c.AddJob(spec, j)
}
