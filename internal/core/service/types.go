package service

import "github.com/nodeops/jobctl/internal/core/domain"

// The node wraps every payload in a JSON:API style envelope:
// {"data": {"id": ..., "attributes": {...}}} for single resources and
// {"data": [...]} for collections. These types stay private to the
// service layer; nothing outside it touches raw payloads.

// jobAttributes is the attributes block of a job resource.
type jobAttributes struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	CreatedAt     string `json:"createdAt"`
}

// jobResource is a single job in the node's envelope.
type jobResource struct {
	ID         string        `json:"id"`
	Attributes jobAttributes `json:"attributes"`
}

func (r jobResource) toDomain() domain.Job {
	return domain.Job{
		ID:            r.ID,
		Name:          r.Attributes.Name,
		Type:          r.Attributes.Type,
		SchemaVersion: r.Attributes.SchemaVersion,
		CreatedAt:     r.Attributes.CreatedAt,
	}
}

// jobListEnvelope is the GET /v2/jobs response.
type jobListEnvelope struct {
	Data []jobResource `json:"data"`
}

// jobEnvelope is the POST /v2/jobs response.
type jobEnvelope struct {
	Data jobResource `json:"data"`
}

// runAttributes is the attributes block of a run resource.
type runAttributes struct {
	Status      string    `json:"status"`
	FatalErrors []*string `json:"fatalErrors"`
	Errors      []*string `json:"errors"`
	Outputs     []*string `json:"outputs"`
	FinishedAt  string    `json:"finishedAt"`
}

// runResource is a single run in the node's envelope.
type runResource struct {
	ID         string        `json:"id"`
	Attributes runAttributes `json:"attributes"`
}

func (r runResource) toDomain(jobID string) *domain.Run {
	return &domain.Run{
		ID:          r.ID,
		JobID:       jobID,
		Status:      domain.RunStatus(r.Attributes.Status),
		FatalErrors: r.Attributes.FatalErrors,
		Errors:      r.Attributes.Errors,
		Outputs:     r.Attributes.Outputs,
		FinishedAt:  r.Attributes.FinishedAt,
	}
}

// runListEnvelope is the GET /v2/jobs/{id}/runs response.
type runListEnvelope struct {
	Data []runResource `json:"data"`
}

// runEnvelope is the POST /v2/jobs/{id}/runs response.
type runEnvelope struct {
	Data runResource `json:"data"`
}

// createJobRequest is the POST /v2/jobs payload. The TOML spec text
// travels verbatim.
type createJobRequest struct {
	TOML string `json:"toml"`
}

// loginRequest is the POST /sessions payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
