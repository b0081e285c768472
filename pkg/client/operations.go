package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/thexDman/domain-monitoring-devops/pkg/api"
)

// Login performs a credential check and returns the issued session
// token. Rejected credentials come back as *APIError.
func (c *Client) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	var resp api.LoginResponse
	err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", api.LoginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. All three fields are sent verbatim;
// confirmation matching is a server-side concern.
func (c *Client) Register(ctx context.Context, username, password, confirmation string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/auth/register", api.RegisterRequest{
		Username:             username,
		Password:             password,
		PasswordConfirmation: confirmation,
	}, nil)
}

// ListDomains fetches the current domain collection.
func (c *Client) ListDomains(ctx context.Context) (*api.ListDomainsResponse, error) {
	var resp api.ListDomainsResponse
	if err := c.get(ctx, "/api/domains", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddDomain puts one domain on the watch list.
func (c *Client) AddDomain(ctx context.Context, domain string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/domains", api.AddDomainRequest{Domain: domain}, nil)
}

// DeleteDomains removes the given domains from the watch list.
func (c *Client) DeleteDomains(ctx context.Context, domains []string) (*api.DeleteDomainsResponse, error) {
	var resp api.DeleteDomainsResponse
	err := c.sendJSON(ctx, http.MethodDelete, "/api/domains", api.DeleteDomainsRequest{Domains: domains}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// BulkImport uploads a domain list file as multipart content.
func (c *Client) BulkImport(ctx context.Context, filename string, content io.Reader) (*api.BulkUploadResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/domains/bulk", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp api.BulkUploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scan requests an immediate rescan of the caller's domains.
func (c *Client) Scan(ctx context.Context) (*api.ScanResponse, error) {
	var resp api.ScanResponse
	if err := c.get(ctx, "/api/domains/scan", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
