package service

import (
	"context"
	"net/http"

	"github.com/nodeops/jobctl/internal/cli/connection"
	"github.com/nodeops/jobctl/internal/core/domain"
	"github.com/nodeops/jobctl/internal/telemetry/logger"
)

// Jobs provides typed operations over the node's job API. Every
// operation is a single authenticated request; an authentication
// rejection triggers exactly one re-login and one retry through the
// session manager.
type Jobs struct {
	client  *connection.HTTPClient
	session *Session
}

// NewJobs creates a job client sharing the session's transport.
func NewJobs(client *connection.HTTPClient, session *Session) *Jobs {
	return &Jobs{
		client:  client,
		session: session,
	}
}

// authenticated runs one request with session handling: ensure a
// credential first, then on a 401 refresh the session once and retry
// once. A second rejection surfaces as AuthError with no further
// retry.
func (j *Jobs) authenticated(ctx context.Context, fn func() (*http.Response, error)) (*http.Response, error) {
	if _, err := j.session.Ensure(ctx); err != nil {
		return nil, err
	}

	resp, err := fn()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	logger.L(ctx).Debug("cached session rejected, re-authenticating")
	if _, err := j.session.Refresh(ctx); err != nil {
		return nil, err
	}

	resp, err = fn()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return nil, domain.ErrAuth.WithDetails(msg)
	}
	return resp, nil
}

// List returns the jobs registered on the node, in the order the node
// reports them. An empty list is a valid result, not an error. A
// permission rejection is AuthError; any other non-2xx listing
// response is transient and worth a retry.
func (j *Jobs) List(ctx context.Context) ([]domain.Job, error) {
	resp, err := j.authenticated(ctx, func() (*http.Response, error) {
		return j.client.Get(ctx, "/v2/jobs")
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return nil, domain.ErrAuth.WithDetails(msg)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return nil, domain.ErrTransient.WithDetails(msg)
	}

	var envelope jobListEnvelope
	if err := connection.ParseResponse(resp, &envelope); err != nil {
		return nil, domain.ErrTransient.WithCause(err)
	}

	jobs := make([]domain.Job, 0, len(envelope.Data))
	for _, r := range envelope.Data {
		jobs = append(jobs, r.toDomain())
	}
	return jobs, nil
}

// Create submits the job specification and returns the node-assigned
// job id. The spec travels verbatim; validation is the node's job,
// and its rejection message is passed through on CreateError.
func (j *Jobs) Create(ctx context.Context, spec domain.JobSpec) (string, error) {
	if spec.Empty() {
		return "", domain.ErrCreate.WithDetails("empty job specification")
	}

	resp, err := j.authenticated(ctx, func() (*http.Response, error) {
		return j.client.Post(ctx, "/v2/jobs", createJobRequest{TOML: spec.TOML})
	})
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return "", domain.ErrCreate.WithDetails(msg)
	}

	var envelope jobEnvelope
	if err := connection.ParseResponse(resp, &envelope); err != nil {
		return "", domain.ErrCreate.WithCause(err)
	}
	if envelope.Data.ID == "" {
		return "", domain.ErrCreate.WithDetails("no job id in create response")
	}

	logger.L(ctx).Info("job created", "job_id", envelope.Data.ID)
	return envelope.Data.ID, nil
}

// StartRun triggers a run of the job and returns the node-assigned
// run id.
func (j *Jobs) StartRun(ctx context.Context, jobID string) (string, error) {
	resp, err := j.authenticated(ctx, func() (*http.Response, error) {
		return j.client.Post(ctx, "/v2/jobs/"+jobID+"/runs", struct{}{})
	})
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return "", domain.ErrNotFound.WithDetails("job " + jobID + ": " + msg)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return "", domain.ErrRun.WithDetails(msg)
	}

	var envelope runEnvelope
	if err := connection.ParseResponse(resp, &envelope); err != nil {
		return "", domain.ErrRun.WithCause(err)
	}
	if envelope.Data.ID == "" {
		return "", domain.ErrRun.WithDetails("no run id in response")
	}

	logger.L(ctx).Info("run started", "job_id", jobID, "run_id", envelope.Data.ID)
	return envelope.Data.ID, nil
}

// RunStatus fetches the current state of a run. The node exposes runs
// as a per-job collection, so the client filters by run id. A missing
// job or a run id absent from the listing is NotFoundError; a server
// error is transient (the poller retries it on its normal cadence).
func (j *Jobs) RunStatus(ctx context.Context, jobID, runID string) (*domain.Run, error) {
	resp, err := j.authenticated(ctx, func() (*http.Response, error) {
		return j.client.Get(ctx, "/v2/jobs/"+jobID+"/runs")
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return nil, domain.ErrNotFound.WithDetails("job " + jobID + ": " + msg)
	case resp.StatusCode >= 500:
		msg := connection.ErrorMessage(resp)
		resp.Body.Close()
		return nil, domain.ErrTransient.WithDetails(msg)
	}

	var envelope runListEnvelope
	if err := connection.ParseResponse(resp, &envelope); err != nil {
		return nil, domain.ErrRun.WithCause(err)
	}

	for _, r := range envelope.Data {
		if r.ID == runID {
			return r.toDomain(jobID), nil
		}
	}
	return nil, domain.ErrNotFound.WithDetails("run " + runID + " not in job " + jobID + " listing")
}

// Delete removes the job. A 404 counts as success so cleanup scripts
// can delete without checking existence first. Anything else non-2xx
// is DeleteError.
func (j *Jobs) Delete(ctx context.Context, jobID string) error {
	resp, err := j.authenticated(ctx, func() (*http.Response, error) {
		return j.client.Delete(ctx, "/v2/jobs/"+jobID)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		logger.L(ctx).Info("job deleted", "job_id", jobID)
		return nil
	case resp.StatusCode == http.StatusNotFound:
		logger.L(ctx).Debug("job already gone", "job_id", jobID)
		return nil
	default:
		return domain.ErrDelete.WithDetails(connection.ErrorMessage(resp))
	}
}
