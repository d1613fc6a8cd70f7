// Package connection provides the HTTP transport for jobctl.
package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nodeops/jobctl/internal/core/domain"
)

// DefaultTimeout bounds each request so a hung node cannot stall the
// process. Exceeding it classifies as a transient failure.
const DefaultTimeout = 10 * time.Second

// HTTPClient provides HTTP communication with the node.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	cred    *domain.Credential
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithTLS sets the TLS configuration used for https node URLs
// (custom CA roots for self-signed node certificates).
func WithTLS(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		c.client.Transport = transport
	}
}

// NewHTTPClient creates a new HTTP client for the given base URL.
// A zero timeout selects DefaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	// Ensure baseURL has http:// prefix
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredential sets the session credential attached to subsequent
// requests. A nil credential sends unauthenticated requests (only the
// login endpoint accepts those).
func (c *HTTPClient) SetCredential(cred *domain.Credential) {
	c.cred = cred
}

// Credential returns the credential currently attached to requests.
func (c *HTTPClient) Credential() *domain.Credential {
	return c.cred
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	return resp, nil
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request) {
	if c.cred.Valid() {
		req.Header.Set("Cookie", c.cred.Cookie())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jobctl/1.0")
}

// classifyTransport maps a transport-level failure (no response at
// all) to the transient error class.
func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrTransient.WithDetails("request timed out").WithCause(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTransient.WithDetails("request timed out").WithCause(err)
	}
	return domain.ErrTransient.WithDetails(err.Error()).WithCause(err)
}

// nodeError is the error body shape the node returns. Single-message
// and multi-error forms both occur.
type nodeError struct {
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
	Message string `json:"message"`
}

// ErrorMessage extracts the node's error message from a non-2xx
// response body, verbatim where possible. The body is consumed.
func ErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}

	var ne nodeError
	if err := json.Unmarshal(data, &ne); err == nil {
		if len(ne.Errors) > 0 && ne.Errors[0].Detail != "" {
			var parts []string
			for _, e := range ne.Errors {
				if e.Detail != "" {
					parts = append(parts, e.Detail)
				}
			}
			return strings.Join(parts, "; ")
		}
		if ne.Message != "" {
			return ne.Message
		}
	}

	return strings.TrimSpace(string(data))
}

// ParseResponse decodes a 2xx JSON response body into target and
// closes the body. Non-2xx responses return an error carrying the
// node's message; callers classify it into the domain taxonomy.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, ErrorMessage(resp))
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	return nil
}
