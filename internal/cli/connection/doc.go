// Package connection provides the HTTP transport for jobctl.
//
// It wraps net/http with the conventions the node API expects:
//
//   - JSON request and response bodies
//   - session-cookie authentication on every request
//   - a bounded per-request timeout so a hung node cannot block the
//     process indefinitely
//   - classification of transport failures as transient errors
//
// Typed API operations live in internal/core/service; this package
// only moves bytes.
package connection
