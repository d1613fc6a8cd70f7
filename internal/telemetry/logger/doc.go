// Package logger provides structured logging for jobctl.
//
// All diagnostics go to stderr as JSON (or text) so stdout stays
// reserved for command output that scripts consume. Credential
// material (password, token, session cookie) is redacted before it
// can reach a log line.
package logger
