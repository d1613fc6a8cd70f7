// Package service implements the client-side operations of jobctl.
//
// Three collaborators, leaf-first:
//
//   - Session: acquires and caches the node session token, logging in
//     only when no usable credential exists and re-logging in exactly
//     once when the node rejects the cached one
//   - Jobs: typed, authenticated operations over the node's job API
//     (list, create, start run, run status, delete)
//   - Poller: drives a submitted run to a terminal outcome with a
//     fixed cadence and a bounded attempt budget
//
// All operations are synchronous and blocking; one invocation works
// with one job or run at a time.
package service
