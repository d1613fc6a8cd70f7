// Package command provides CLI command definitions for jobctl.
//
// Commands:
//
//   - job list: list jobs registered on the node
//   - job create: register a job from a TOML specification file
//   - job run: trigger a run and wait for its terminal outcome
//   - job delete: remove a job (a missing job counts as deleted)
//   - job purge: delete every job on the node
//   - job verify: create, run and delete a job end to end
//   - session login: force a fresh login and persist the token
//   - session show: display the cached session artifact
//   - session clear: remove the cached session artifact
//
// Exit codes map the error taxonomy so scripts can branch on the
// failure class; see the domain package.
package command
