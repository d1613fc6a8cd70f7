// Package domain defines the core domain models for jobctl.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling:
//
//   - Job, JobSpec: a unit of work on the node and its declarative spec
//   - Run, RunStatus: one execution of a job and its node-side status
//   - Credential: the cached session token artifact
//   - DomainError: structured error taxonomy with exit-code mapping
package domain
