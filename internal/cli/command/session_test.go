package command

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nodeops/jobctl/internal/core/domain"
)

func TestSessionLogin(t *testing.T) {
	node := newMockNode()
	defer node.Close()

	h := newHarness(t, node)
	if err := h.run("session", "login"); err != nil {
		t.Fatalf("session login error: %v", err)
	}
	if node.logins != 1 {
		t.Errorf("logins = %d, want 1", node.logins)
	}

	out := h.out.String()
	if !strings.Contains(out, "clsession") {
		t.Errorf("missing cookie name in %q", out)
	}
	if strings.Contains(out, "tok-fresh") {
		t.Errorf("token value leaked into output: %q", out)
	}

	// The artifact is on disk and loadable.
	data, err := os.ReadFile(h.tokenFile)
	if err != nil {
		t.Fatalf("token file not written: %v", err)
	}
	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		t.Fatalf("token file not parseable: %v", err)
	}
	if cred.Token != "tok-fresh" || cred.CookieName != "clsession" {
		t.Errorf("artifact = %+v", cred)
	}
}

func TestSessionLogin_BadCredentials(t *testing.T) {
	node := newMockNode()
	defer node.Close()
	node.loginFail = true

	h := newHarness(t, node)
	err := h.run("session", "login")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if domain.ExitCode(err) != domain.ExitAuth {
		t.Errorf("exit code = %d, want %d", domain.ExitCode(err), domain.ExitAuth)
	}
	if _, statErr := os.Stat(h.tokenFile); statErr == nil {
		t.Error("artifact written despite failed login")
	}
}

func TestSessionShow(t *testing.T) {
	node := newMockNode()
	defer node.Close()

	h := newHarness(t, node)

	t.Run("without artifact", func(t *testing.T) {
		if err := h.run("session", "show"); err != nil {
			t.Fatalf("session show error: %v", err)
		}
		if !strings.Contains(h.out.String(), "No cached session.") {
			t.Errorf("missing absence notice: %q", h.out.String())
		}
	})

	t.Run("with artifact", func(t *testing.T) {
		seedArtifact(t, h.tokenFile, "clsession", "tok-old")
		h.out.Reset()

		if err := h.run("session", "show"); err != nil {
			t.Fatalf("session show error: %v", err)
		}
		out := h.out.String()
		if !strings.Contains(out, "clsession") {
			t.Errorf("missing cookie name in %q", out)
		}
		if strings.Contains(out, "tok-old") {
			t.Errorf("token value leaked into output: %q", out)
		}
		// Show never talks to the node.
		if node.logins != 0 {
			t.Errorf("logins = %d, want 0", node.logins)
		}
	})
}

func TestSessionClear(t *testing.T) {
	node := newMockNode()
	defer node.Close()

	h := newHarness(t, node)
	seedArtifact(t, h.tokenFile, "clsession", "tok-old")

	if err := h.run("session", "clear"); err != nil {
		t.Fatalf("session clear error: %v", err)
	}
	if _, err := os.Stat(h.tokenFile); !os.IsNotExist(err) {
		t.Error("artifact still present after clear")
	}

	// Clearing twice is fine.
	if err := h.run("session", "clear"); err != nil {
		t.Fatalf("second clear error: %v", err)
	}
}

// The cached token is used optimistically; when the node rejects it
// the command logs in once, retries, and succeeds without surfacing
// an error.
func TestStaleTokenTriggersOneRelogin(t *testing.T) {
	node := newMockNode()
	defer node.Close()
	node.handleAuthed(http.MethodGet, "/v2/jobs", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"data": []any{jobData("jb_1", "a", "webhook")}})
	})

	h := newHarness(t, node)
	seedArtifact(t, h.tokenFile, "clsession", "tok-stale")

	if err := h.run("job", "list"); err != nil {
		t.Fatalf("job list error: %v", err)
	}
	if node.logins != 1 {
		t.Errorf("logins = %d, want exactly 1", node.logins)
	}
	if !strings.Contains(h.out.String(), "jb_1") {
		t.Errorf("missing job in output: %q", h.out.String())
	}

	// The fresh token superseded the stale artifact.
	data, err := os.ReadFile(h.tokenFile)
	if err != nil {
		t.Fatalf("token file unreadable: %v", err)
	}
	if !strings.Contains(string(data), "tok-fresh") {
		t.Errorf("artifact not superseded: %s", data)
	}
}

// A corrupt artifact means a plain login, not a crash.
func TestCorruptArtifactFallsBackToLogin(t *testing.T) {
	node := newMockNode()
	defer node.Close()
	node.handleAuthed(http.MethodGet, "/v2/jobs", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	h := newHarness(t, node)
	if err := os.WriteFile(h.tokenFile, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt artifact: %v", err)
	}

	if err := h.run("job", "list"); err != nil {
		t.Fatalf("job list error: %v", err)
	}
	if node.logins != 1 {
		t.Errorf("logins = %d, want 1", node.logins)
	}
}

func seedArtifact(t *testing.T, path, cookieName, token string) {
	t.Helper()
	cred := domain.Credential{
		CookieName: cookieName,
		Token:      token,
		IssuedAt:   time.Now().Add(-time.Hour).UTC(),
	}
	data, err := json.Marshal(cred)
	if err != nil {
		t.Fatalf("marshal credential: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}
