// Package api is the gateway to the stadium booking backend.  Every call goes
// through Client.do, which turns the outcome into either a decoded body or
// one of the normalized error types in errors.go.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 4 << 20

// Client calls the backend's REST endpoints relative to a fixed base URL.
// A Client is safe for concurrent use; WithToken returns a copy bound to a
// bearer token instead of mutating the receiver.
type Client struct {
	baseURL string
	hc      *http.Client
	token   string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout bounds every call.  The default is no timeout: a hung call
// simply keeps the affected control disabled until it returns.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.hc = &http.Client{Timeout: d, Transport: c.hc.Transport}
		}
	}
}

// New builds a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithToken returns a copy of c that sends the bearer token on every call.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs one request.  body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded success body.  fallback is the message used
// for rejections that carry no "error" field.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any, fallback string) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &ValidationError{Field: "body", Message: err.Error()}
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil || method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectionError{Op: op, Status: resp.StatusCode, Message: rejectionMessage(data, fallback)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		// The call reached the server but the answer is unusable; callers
		// treat it like a rejection and reconcile.
		return &RejectionError{Op: op, Status: resp.StatusCode, Message: msgBadPayload}
	}
	return nil
}

// rejectionMessage extracts {"error": "..."} from a failure body.
func rejectionMessage(data []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fallback
}
