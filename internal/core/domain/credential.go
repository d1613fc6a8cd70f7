package domain

import "time"

// Credential is the cached session token artifact. The token proves an
// authenticated session with the node; its freshness is the node's
// authority, so no expiry is computed locally. At most one credential
// is cached at a time and a fresh login always supersedes it.
type Credential struct {
	// CookieName is the name of the session cookie the node issued
	// (e.g. "clsession").
	CookieName string `json:"cookie_name"`

	// Token is the opaque session token value.
	Token string `json:"token"`

	// IssuedAt records when the login that produced this token
	// happened. Informational only.
	IssuedAt time.Time `json:"issued_at"`
}

// Valid reports whether the credential carries enough to authenticate
// a request. An artifact missing either field is treated as absent.
func (c *Credential) Valid() bool {
	return c != nil && c.CookieName != "" && c.Token != ""
}

// Cookie renders the credential as an HTTP Cookie header value.
func (c *Credential) Cookie() string {
	return c.CookieName + "=" + c.Token
}
