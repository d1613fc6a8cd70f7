// Package credfile persists the cached session credential on local
// storage.
//
// The artifact is a small JSON file (default ~/.jobctl/session.json,
// mode 0600) holding the session cookie name, the token value and the
// issue time. It is deliberately forgiving: a missing or unparseable
// file reads as "no credential" and simply triggers a fresh login that
// overwrites it. A failed write is reported but never fatal, since the
// in-memory credential still serves the current invocation.
package credfile
