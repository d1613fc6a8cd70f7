package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/nodeops/jobctl/internal/cli/connection"
	"github.com/nodeops/jobctl/internal/core/domain"
)

// mockNode is a test double for the node's HTTP API. It serves a
// login endpoint plus path-prefix handlers, and counts logins so
// tests can assert on re-authentication behavior.
type mockNode struct {
	*httptest.Server

	handlers map[string]http.HandlerFunc

	logins     int
	loginFail  bool
	noCookie   bool
	cookieName string
	token      string
}

func newMockNode() *mockNode {
	m := &mockNode{
		handlers:   make(map[string]http.HandlerFunc),
		cookieName: "clsession",
		token:      "tok-fresh",
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sessions" && r.Method == http.MethodPost {
			m.serveLogin(w, r)
			return
		}
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

func (m *mockNode) serveLogin(w http.ResponseWriter, r *http.Request) {
	m.logins++
	if m.loginFail {
		errorResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !m.noCookie {
		http.SetCookie(w, &http.Cookie{Name: m.cookieName, Value: m.token})
	}
	jsonResponse(w, http.StatusOK, map[string]any{"data": map[string]any{"type": "session"}})
}

// handle registers a handler for a path prefix.
func (m *mockNode) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

// requireCookie wraps a handler, rejecting requests whose session
// cookie does not match the node's current token.
func (m *mockNode) requireCookie(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != m.cookieName+"="+m.token {
			errorResponse(w, http.StatusUnauthorized, "session expired")
			return
		}
		handler(w, r)
	}
}

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse writes a node-style error response.
func errorResponse(w http.ResponseWriter, status int, detail string) {
	jsonResponse(w, status, map[string]any{
		"errors": []map[string]string{{"detail": detail}},
	})
}

// memStore is an in-memory CredentialStore recording call counts.
type memStore struct {
	cred    *domain.Credential
	loads   int
	saves   int
	saveErr error
}

func (s *memStore) Load() (*domain.Credential, error) {
	s.loads++
	return s.cred, nil
}

func (s *memStore) Save(cred *domain.Credential) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cred = cred
	return nil
}

// newFixture wires a transport, session and job client against the
// mock node.
func newFixture(node *mockNode, store CredentialStore) (*connection.HTTPClient, *Session, *Jobs) {
	client := connection.NewHTTPClient(node.URL, 5*time.Second)
	session := NewSession(client, store, "op@example.com", "hunter22")
	return client, session, NewJobs(client, session)
}
