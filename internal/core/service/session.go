package service

import (
	"context"
	"net/http"
	"time"

	"github.com/nodeops/jobctl/internal/cli/connection"
	"github.com/nodeops/jobctl/internal/core/domain"
	"github.com/nodeops/jobctl/internal/telemetry/logger"
)

// CredentialStore defines the persistence interface for the cached
// session credential.
type CredentialStore interface {
	// Load returns the cached credential, or nil when absent. Absence
	// is not an error.
	Load() (*domain.Credential, error)

	// Save overwrites the cached credential.
	Save(cred *domain.Credential) error
}

// Session manages the node session lifecycle. It is a two-state
// cache: either a verified credential is attached to the transport,
// or one must be obtained. A cached token is trusted optimistically;
// the node is the authority on freshness, and a rejection downstream
// triggers exactly one Refresh.
type Session struct {
	client   *connection.HTTPClient
	store    CredentialStore
	email    string
	password string
}

// NewSession creates a session manager bound to the given transport
// and credential store.
func NewSession(client *connection.HTTPClient, store CredentialStore, email, password string) *Session {
	return &Session{
		client:   client,
		store:    store,
		email:    email,
		password: password,
	}
}

// Ensure returns a usable credential. Order of preference: the
// credential already attached to the transport, then the on-disk
// artifact, then a fresh login. No expiry is computed locally.
func (s *Session) Ensure(ctx context.Context) (*domain.Credential, error) {
	if cred := s.client.Credential(); cred.Valid() {
		return cred, nil
	}

	if s.store != nil {
		cred, err := s.store.Load()
		if err == nil && cred.Valid() {
			logger.L(ctx).Debug("using cached session", "issued_at", cred.IssuedAt)
			s.client.SetCredential(cred)
			return cred, nil
		}
	}

	return s.Refresh(ctx)
}

// Refresh performs a login against the node and persists the
// resulting credential, superseding whatever was cached. Login
// failure is fatal for the invocation; nothing is cached on failure.
func (s *Session) Refresh(ctx context.Context) (*domain.Credential, error) {
	log := logger.L(ctx)
	log.Debug("logging in", "url", s.client.BaseURL()+"/sessions", "email", s.email)

	// The login request itself must not carry a stale cookie.
	s.client.SetCredential(nil)

	resp, err := s.client.Post(ctx, "/sessions", loginRequest{Email: s.email, Password: s.password})
	if err != nil {
		return nil, domain.ErrAuth.WithDetails("login request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.ErrAuth.WithDetails(connection.ErrorMessage(resp))
	}

	cookie := sessionCookie(resp)
	if cookie == nil {
		return nil, domain.ErrAuth.WithDetails("no session cookie in login response")
	}

	cred := &domain.Credential{
		CookieName: cookie.Name,
		Token:      cookie.Value,
		IssuedAt:   time.Now().UTC(),
	}
	s.client.SetCredential(cred)

	if s.store != nil {
		if err := s.store.Save(cred); err != nil {
			// The in-memory credential still serves this invocation.
			log.Warn("could not persist session credential", "error", err)
		} else {
			log.Debug("session credential persisted")
		}
	}

	log.Info("logged in", "email", s.email)
	return cred, nil
}

// sessionCookie picks the session cookie from a login response. The
// node sets exactly one cookie (e.g. "clsession"); take the first.
func sessionCookie(resp *http.Response) *http.Cookie {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil
	}
	return cookies[0]
}
