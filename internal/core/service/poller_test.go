package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nodeops/jobctl/internal/core/domain"
)

// scriptedRuns replays a fixed sequence of poll responses.
type scriptedRuns struct {
	responses []pollResponse
	calls     int
}

type pollResponse struct {
	run *domain.Run
	err error
}

func (s *scriptedRuns) RunStatus(ctx context.Context, jobID, runID string) (*domain.Run, error) {
	if s.calls >= len(s.responses) {
		// A call past the script is a budget violation; make it loud.
		s.calls++
		return nil, errors.New("poll past scripted budget")
	}
	r := s.responses[s.calls]
	s.calls++
	return r.run, r.err
}

func statusRun(status domain.RunStatus) pollResponse {
	return pollResponse{run: &domain.Run{ID: "run-7", JobID: "42", Status: status}}
}

func fastPoller(runs RunGetter, attempts int) *Poller {
	return NewPoller(runs, time.Millisecond, attempts)
}

func TestPoller_SucceedsOnThirdPoll(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		statusRun(domain.RunStatusPending),
		statusRun(domain.RunStatusPending),
		statusRun(domain.RunStatusCompleted),
	}}

	result, err := fastPoller(runs, 3).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Errorf("Outcome = %v, want succeeded", result.Outcome)
	}
	if runs.calls != 3 {
		t.Errorf("polls = %d, want exactly 3", runs.calls)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
	if result.Err() != nil {
		t.Errorf("Err() = %v, want nil for success", result.Err())
	}
}

func TestPoller_TimesOutWithinBudget(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		statusRun(domain.RunStatusPending),
		statusRun(domain.RunStatusPending),
		statusRun(domain.RunStatusPending), // must never be requested
	}}

	result, err := fastPoller(runs, 2).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeTimedOut {
		t.Errorf("Outcome = %v, want timed out", result.Outcome)
	}
	if runs.calls != 2 {
		t.Errorf("polls = %d, want exactly 2 (never a 3rd request)", runs.calls)
	}
	if !errors.Is(result.Err(), domain.ErrTimedOut) {
		t.Errorf("Err() = %v, want TimedOut", result.Err())
	}
}

func TestPoller_TerminalFailure(t *testing.T) {
	detail := "fatal: broken pipeline"
	runs := &scriptedRuns{responses: []pollResponse{
		statusRun(domain.RunStatusPending),
		{run: &domain.Run{ID: "run-7", Status: domain.RunStatusErrored, FatalErrors: []*string{&detail}}},
	}}

	result, err := fastPoller(runs, 5).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %v, want failed", result.Outcome)
	}
	if runs.calls != 2 {
		t.Errorf("polls = %d, want 2 (stop at terminal failure)", runs.calls)
	}
	if !errors.Is(result.Err(), domain.ErrRun) {
		t.Errorf("Err() = %v, want RunError", result.Err())
	}
}

func TestPoller_TransientErrorsUseNormalCadence(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		{err: domain.ErrTransient.WithDetails("timeout")},
		statusRun(domain.RunStatusPending),
		{err: domain.ErrTransient.WithDetails("connection reset")},
		statusRun(domain.RunStatusCompleted),
	}}

	result, err := fastPoller(runs, 4).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeSucceeded {
		t.Errorf("Outcome = %v, want succeeded despite transient polls", result.Outcome)
	}
	if runs.calls != 4 {
		t.Errorf("polls = %d, transient failures consume normal budget only", runs.calls)
	}
}

func TestPoller_TransientOnlyExhaustsBudget(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		{err: domain.ErrTransient},
		{err: domain.ErrTransient},
	}}

	result, err := fastPoller(runs, 2).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeTimedOut {
		t.Errorf("Outcome = %v, want timed out when only transient errors seen", result.Outcome)
	}
}

func TestPoller_HardFailureIsImmediatelyTerminal(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		{err: domain.ErrNotFound.WithDetails("run vanished")},
		statusRun(domain.RunStatusCompleted), // must never be requested
	}}

	result, err := fastPoller(runs, 5).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Errorf("Outcome = %v, want failed", result.Outcome)
	}
	if runs.calls != 1 {
		t.Errorf("polls = %d, hard failure must not be retried", runs.calls)
	}
	if !errors.Is(result.Err(), domain.ErrNotFound) {
		t.Errorf("Err() = %v, want the NotFound cause", result.Err())
	}
}

func TestPoller_UnknownStatusNeverSuccess(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		statusRun(domain.RunStatus("mystery_state")),
		statusRun(domain.RunStatus("mystery_state")),
	}}

	result, err := fastPoller(runs, 2).Await(context.Background(), "42", "run-7")
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if result.Outcome != OutcomeTimedOut {
		t.Errorf("Outcome = %v, unknown statuses must exhaust the budget, not succeed", result.Outcome)
	}
}

func TestPoller_ContextCancellation(t *testing.T) {
	runs := &scriptedRuns{responses: []pollResponse{
		statusRun(domain.RunStatusPending),
		statusRun(domain.RunStatusPending),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Long interval so the limiter would block; cancellation must win.
	_, err := NewPoller(runs, time.Hour, 5).Await(ctx, "42", "run-7")
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestPoller_Defaults(t *testing.T) {
	p := NewPoller(&scriptedRuns{}, 0, 0)
	if p.interval != DefaultPollInterval {
		t.Errorf("interval = %v, want default", p.interval)
	}
	if p.attempts != DefaultPollAttempts {
		t.Errorf("attempts = %d, want default", p.attempts)
	}
}

func TestOutcome_String(t *testing.T) {
	if OutcomeSucceeded.String() != "succeeded" ||
		OutcomeFailed.String() != "failed" ||
		OutcomeTimedOut.String() != "timed out" {
		t.Error("Outcome.String() mismatch")
	}
}
