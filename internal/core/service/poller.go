package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/nodeops/jobctl/internal/core/domain"
	"github.com/nodeops/jobctl/internal/telemetry/logger"
)

// Poll defaults, matching the node's typical run latency.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollAttempts = 30
)

// RunGetter fetches the current state of a run.
type RunGetter interface {
	RunStatus(ctx context.Context, jobID, runID string) (*domain.Run, error)
}

// Outcome is the terminal result of polling a run.
type Outcome int

const (
	// OutcomeSucceeded means the run reached terminal success.
	OutcomeSucceeded Outcome = iota
	// OutcomeFailed means the run reached terminal failure, or a hard
	// error (e.g. the run id vanished) ended polling early.
	OutcomeFailed
	// OutcomeTimedOut means the attempt budget ran out before the run
	// reached any terminal status.
	OutcomeTimedOut
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "timed out"
	}
}

// Result is the final report of a polling session.
type Result struct {
	// Outcome is the terminal classification.
	Outcome Outcome

	// Run is the last observed run state, nil if no poll ever
	// returned one.
	Run *domain.Run

	// Attempts is the number of status requests issued.
	Attempts int

	// Cause is the hard error that ended polling, when one did.
	Cause error
}

// Err maps the result into the error taxonomy: nil for success, the
// hard cause or a RunError for failure, TimedOut for an exhausted
// budget. TimedOut is a reported outcome with its own exit code, not
// an ambiguous exception.
func (r *Result) Err() error {
	switch r.Outcome {
	case OutcomeSucceeded:
		return nil
	case OutcomeTimedOut:
		return domain.ErrTimedOut
	default:
		if r.Cause != nil {
			return r.Cause
		}
		detail := "run failed"
		if r.Run != nil && r.Run.ErrorDetail() != "" {
			detail = r.Run.ErrorDetail()
		}
		return domain.ErrRun.WithDetails(detail)
	}
}

// Poller drives a run from submission to a terminal outcome by
// repeated status queries at a fixed interval, up to a fixed number
// of attempts.
type Poller struct {
	runs     RunGetter
	interval time.Duration
	attempts int
}

// NewPoller creates a poller. Non-positive interval or attempts
// select the defaults.
func NewPoller(runs RunGetter, interval time.Duration, attempts int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	return &Poller{
		runs:     runs,
		interval: interval,
		attempts: attempts,
	}
}

// Await polls the run until it reaches a terminal state or the
// attempt budget is exhausted. The first poll fires immediately;
// later polls are paced by the interval. Transient failures consume
// the normal cadence and nothing more; a hard failure (unknown run
// id, auth exhaustion) ends polling at once.
func (p *Poller) Await(ctx context.Context, jobID, runID string) (*Result, error) {
	log := logger.L(ctx).With("job_id", jobID, "run_id", runID)

	// Burst of one lets the first poll go out immediately; every
	// later Wait blocks one interval.
	limiter := rate.NewLimiter(rate.Every(p.interval), 1)

	result := &Result{Outcome: OutcomeTimedOut}

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		result.Attempts = attempt

		run, err := p.runs.RunStatus(ctx, jobID, runID)
		if err != nil {
			if errors.Is(err, domain.ErrTransient) {
				log.Warn("poll failed, retrying at next interval",
					"attempt", attempt, "error", err)
				continue
			}
			// Hard failure: terminal, not retried.
			log.Error("polling aborted", "attempt", attempt, "error", err)
			result.Outcome = OutcomeFailed
			result.Cause = err
			return result, nil
		}

		result.Run = run
		switch run.Outcome() {
		case domain.StatusSucceeded:
			log.Info("run succeeded", "attempts", attempt)
			result.Outcome = OutcomeSucceeded
			return result, nil
		case domain.StatusFailed:
			log.Info("run failed", "attempts", attempt, "detail", run.ErrorDetail())
			result.Outcome = OutcomeFailed
			return result, nil
		default:
			log.Debug("run still in progress",
				"attempt", attempt, "status", string(run.Status))
		}
	}

	log.Warn("run did not reach a terminal status", "attempts", p.attempts)
	return result, nil
}
