// Package output provides output formatting for jobctl.
package output

// RunReport is the final output of a trigger-and-wait operation.
type RunReport struct {
	JobID    string `json:"job_id" yaml:"job_id"`
	RunID    string `json:"run_id" yaml:"run_id"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Status   string `json:"status" yaml:"status"`
	Attempts int    `json:"attempts" yaml:"attempts"`

	// Detail carries the node's error strings for failed runs.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty" table:"wide"`
}

// SessionView describes the cached session artifact. The token value
// itself is never included.
type SessionView struct {
	Email      string `json:"email" yaml:"email"`
	CookieName string `json:"cookie_name" yaml:"cookie_name"`
	IssuedAt   string `json:"issued_at" yaml:"issued_at"`
	TokenFile  string `json:"token_file" yaml:"token_file"`
}
