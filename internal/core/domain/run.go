package domain

import "strings"

// RunStatus is the node's status string for a run. The vocabulary is
// node-defined; the client enumerates the known values and matches
// them exactly. Unknown values are treated as still running, never as
// success.
type RunStatus string

// Known node run statuses.
const (
	RunStatusUnknown    RunStatus = ""
	RunStatusPending    RunStatus = "pending"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusRunning    RunStatus = "running"
	RunStatusSuspended  RunStatus = "suspended"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusErrored    RunStatus = "errored"
)

// StatusClass is the client-side classification of a run status.
type StatusClass int

const (
	// StatusRunning means the run has not reached a terminal state.
	StatusRunning StatusClass = iota
	// StatusSucceeded means the run completed successfully.
	StatusSucceeded
	// StatusFailed means the run reached a terminal failure.
	StatusFailed
)

// String returns a human-readable name for the class.
func (c StatusClass) String() string {
	switch c {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "running"
	}
}

// Terminal reports whether the class ends the polling loop.
func (c StatusClass) Terminal() bool {
	return c != StatusRunning
}

// Classify maps a node status string to its client-side class.
// Matching is case-insensitive; only "completed" is terminal success
// and only "errored" is terminal failure. Every other value,
// including values this client has never seen, counts as still
// running until the poll budget runs out.
func Classify(status RunStatus) StatusClass {
	switch RunStatus(strings.ToLower(string(status))) {
	case RunStatusCompleted:
		return StatusSucceeded
	case RunStatusErrored:
		return StatusFailed
	default:
		return StatusRunning
	}
}

// Run is one execution instance of a job, identified by a node-assigned
// opaque id. The fields mirror the run attributes the node reports.
type Run struct {
	// ID is the node-assigned run identifier.
	ID string `json:"id"`

	// JobID is the identifier of the job this run belongs to.
	JobID string `json:"job_id"`

	// Status is the node's status string, verbatim.
	Status RunStatus `json:"status"`

	// FatalErrors are node-reported fatal pipeline errors. Any non-nil
	// entry means the run failed regardless of Status.
	FatalErrors []*string `json:"fatal_errors,omitempty"`

	// Errors are per-task errors reported by the node.
	Errors []*string `json:"errors,omitempty"`

	// Outputs are per-task outputs reported by the node.
	Outputs []*string `json:"outputs,omitempty"`

	// FinishedAt is the node-reported completion timestamp, empty while
	// the run is in flight.
	FinishedAt string `json:"finished_at,omitempty"`
}

// Finished reports whether the node marked the run as finished even
// if no terminal status string was attached.
func (r *Run) Finished() bool {
	return r.FinishedAt != ""
}

// Outcome classifies the run. Beyond the plain status mapping it
// covers two node quirks observed in the wild:
//
//   - a run can carry fatal errors while its status string is still
//     non-terminal; that is a failure
//   - a finished run can have an empty status; the outputs and errors
//     arrays then decide (all outputs present and no errors means
//     success)
func (r *Run) Outcome() StatusClass {
	for _, e := range r.FatalErrors {
		if e != nil {
			return StatusFailed
		}
	}

	if class := Classify(r.Status); class.Terminal() {
		return class
	}

	if r.Status == RunStatusUnknown && r.Finished() {
		if len(r.Outputs) == 0 {
			return StatusFailed
		}
		for _, o := range r.Outputs {
			if o == nil {
				return StatusFailed
			}
		}
		for _, e := range r.Errors {
			if e != nil {
				return StatusFailed
			}
		}
		return StatusSucceeded
	}

	return StatusRunning
}

// ErrorDetail joins the node's error strings for reporting. Nil
// entries (task slots without an error) are skipped.
func (r *Run) ErrorDetail() string {
	var parts []string
	for _, e := range r.FatalErrors {
		if e != nil {
			parts = append(parts, *e)
		}
	}
	for _, e := range r.Errors {
		if e != nil {
			parts = append(parts, *e)
		}
	}
	return strings.Join(parts, "; ")
}
