package traffic

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Polling defaults: evenly spaced attempts, five minutes of waiting total.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 60
)

// JobTerminatedError is returned when the service reports the job failed or
// was canceled.
type JobTerminatedError struct {
	JobID  string
	Status JobStatus
	Reason string
}

func (e *JobTerminatedError) Error() string {
	return fmt.Sprintf("traffic: job %s %s: %s", e.JobID, e.Status, e.Reason)
}

// JobTimeoutError is returned when the attempt ceiling is exhausted before
// the job reaches a terminal state.
type JobTimeoutError struct {
	JobID    string
	Attempts int
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("traffic: job %s timed out after %d attempts", e.JobID, e.Attempts)
}

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval    time.Duration
	maxAttempts int
}

// WithPollInterval overrides the spacing between status requests.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMaxAttempts overrides the attempt ceiling. The ceiling is what keeps
// a stuck job from blocking a request forever.
func WithMaxAttempts(n int) PollOption {
	return func(c *pollConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Poll queries job status on a fixed interval until the job reaches a
// terminal state or the attempt ceiling is exhausted. The wait between polls
// honors ctx, so an abandoned request cancels promptly without leaking a
// background loop. Attempts are evenly spaced, not backed off: the upstream
// service prefers steady low-rate polling.
func Poll(ctx context.Context, client Client, jobID, token string, opts ...PollOption) (*Job, error) {
	cfg := pollConfig{
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	log := zap.L().With(zap.String("job_id", jobID))

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		job, err := client.GetJob(ctx, jobID, token)
		if err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("traffic: poll job %s", jobID))
		}

		switch job.Status {
		case StatusDone:
			return job, nil
		case StatusFailed, StatusCanceled:
			reason := job.Error
			if reason == "" {
				reason = "unknown error"
			}
			return nil, &JobTerminatedError{JobID: jobID, Status: job.Status, Reason: reason}
		default:
			// pending, running, or anything unrecognized: wait and retry.
			log.Debug("traffic: job not ready",
				zap.String("status", string(job.Status)),
				zap.Int("attempt", attempt),
			)
		}

		if attempt == cfg.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), fmt.Sprintf("traffic: poll job %s canceled", jobID))
		case <-time.After(cfg.interval):
		}
	}

	return nil, &JobTimeoutError{JobID: jobID, Attempts: cfg.maxAttempts}
}
