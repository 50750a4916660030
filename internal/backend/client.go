package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TokenSource supplies the bearer token attached to every request. An empty
// return means the call goes out unauthenticated.
type TokenSource func(ctx context.Context) string

// Client is the REST client for the commerce backend. All gateway components
// talk to the backend through it so auth, envelope decoding and error
// classification live in one place.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          TokenSource
	onUnauthorized func(ctx context.Context)
	log            *logrus.Entry
}

// NewClient builds a Client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, token TokenSource, log *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		log:        log.WithField("component", "backend"),
	}
}

// OnUnauthorized registers a hook invoked whenever the backend answers 401,
// so the session store can drop the stale session.
func (c *Client) OnUnauthorized(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

// envelope is the uniform {success, message, data} wrapper used by most
// profile/admin/order endpoints. Catalog reads return bare payloads.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// errorBody is the error payload shape shared by envelope and bare endpoints.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do issues a JSON request and decodes a bare (non-enveloped) response into
// out. out may be nil when the body is irrelevant.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// DoEnveloped issues a JSON request, unwraps the {success, message, data}
// envelope and decodes data into out. A success=false body is surfaced as a
// 400-class Error carrying the envelope message.
func (c *Client) DoEnveloped(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode %s %s envelope: %w", method, path, err)
	}
	if !env.Success {
		return &Error{Status: http.StatusBadRequest, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s envelope data: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// network failure / timeout: surfaced as a transport-level fault,
		// never silently retried.
		return nil, &Error{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: 0, Message: err.Error()}
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		msg := extractMessage(raw)
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("backend request failed")
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}

	return raw, nil
}

// extractMessage pulls a business message out of an error body, tolerating
// both the envelope shape and Spring-style {message} payloads.
func extractMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
