// Package client provides the HTTP client the console uses to talk to
// the monitoring service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current session token. It is injected into
// the client so that every authenticated request reads the value at
// call time rather than caching it; rotating or clearing the token
// takes effect on the very next request.
type TokenSource interface {
	Token() string
}

// APIError is an application-level failure: the service answered and
// explicitly signalled an error, usually with an operator-readable
// message. Transport faults are returned as ordinary wrapped errors.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to the monitoring service API.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

// New creates a Client for the given server address. The address may
// omit the scheme, in which case http:// is assumed.
func New(server string, tokens TokenSource) *Client {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends the request with the current bearer token attached and
// decodes the JSON response body into target. HTTP statuses >= 400 are
// surfaced as *APIError carrying the server-provided message when one
// is present.
func (c *Client) do(req *http.Request, target any) error {
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "domwatch-console/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &errResp)
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if target != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, target)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, target any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}
