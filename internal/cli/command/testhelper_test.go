package command

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockNode is a test double for the node's HTTP API: a login endpoint
// plus method-and-prefix routed handlers. The longest matching prefix
// wins, so "/v2/jobs/jb_1/runs" routes past a "/v2/jobs" handler.
type mockNode struct {
	*httptest.Server

	routes []route

	logins     int
	loginFail  bool
	cookieName string
	token      string
}

type route struct {
	method  string
	prefix  string
	handler http.HandlerFunc
}

func newMockNode() *mockNode {
	m := &mockNode{
		cookieName: "clsession",
		token:      "tok-fresh",
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sessions" && r.Method == http.MethodPost {
			m.serveLogin(w, r)
			return
		}

		var best *route
		for i := range m.routes {
			rt := &m.routes[i]
			if rt.method != r.Method || !strings.HasPrefix(r.URL.Path, rt.prefix) {
				continue
			}
			if best == nil || len(rt.prefix) > len(best.prefix) {
				best = rt
			}
		}
		if best == nil {
			http.NotFound(w, r)
			return
		}
		best.handler(w, r)
	}))
	return m
}

func (m *mockNode) serveLogin(w http.ResponseWriter, r *http.Request) {
	m.logins++
	if m.loginFail {
		errorResponse(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: m.cookieName, Value: m.token})
	jsonResponse(w, http.StatusOK, map[string]any{"data": map[string]any{"type": "session"}})
}

func (m *mockNode) handle(method, prefix string, handler http.HandlerFunc) {
	m.routes = append(m.routes, route{method: method, prefix: prefix, handler: handler})
}

// handleAuthed registers a handler behind the session cookie check.
func (m *mockNode) handleAuthed(method, prefix string, handler http.HandlerFunc) {
	m.handle(method, prefix, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != m.cookieName+"="+m.token {
			errorResponse(w, http.StatusUnauthorized, "session expired")
			return
		}
		handler(w, r)
	})
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

// jobData builds a node job resource.
func jobData(id, name, jobType string) map[string]any {
	return map[string]any{
		"id": id,
		"attributes": map[string]any{
			"name": name,
			"type": jobType,
		},
	}
}

// runData builds a node run resource.
func runData(id, status string) map[string]any {
	return map[string]any{
		"id": id,
		"attributes": map[string]any{
			"status": status,
		},
	}
}

// harness runs the full CLI app against a mock node with an isolated
// token file and config file.
type harness struct {
	t    *testing.T
	node *mockNode

	out       *bytes.Buffer
	stdin     string
	tokenFile string
	config    string
}

func newHarness(t *testing.T, node *mockNode) *harness {
	t.Helper()
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &harness{
		t:         t,
		node:      node,
		out:       &bytes.Buffer{},
		tokenFile: filepath.Join(dir, "session.json"),
		config:    configPath,
	}
}

// run executes a jobctl invocation and returns the action error.
func (h *harness) run(args ...string) error {
	h.t.Helper()

	app := App()
	app.Writer = h.out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(h.stdin)

	full := []string{
		"jobctl",
		"--node-url", h.node.URL,
		"--email", "op@example.com",
		"--password", "hunter22",
		"--token-file", h.tokenFile,
		"--config", h.config,
	}
	full = append(full, args...)
	return app.RunContext(context.Background(), full)
}

// writeSpecFile drops a TOML job spec into the harness temp area.
func (h *harness) writeSpecFile(content string) string {
	h.t.Helper()
	path := filepath.Join(h.t.TempDir(), "job.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.t.Fatalf("write spec file: %v", err)
	}
	return path
}
