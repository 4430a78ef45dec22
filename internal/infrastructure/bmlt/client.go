// Package bmlt is the client for the BMLT Admin API v4.
package bmlt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meetingsync/internal/config"
	"meetingsync/internal/domain"
	"meetingsync/internal/ports"
)

const (
	apiPrefix    = "/api/v1"
	maxRedirects = 3
)

// Client authenticates once per run and reuses the bearer token for the
// format fetch and every meeting publish.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	token    string
}

var _ ports.Registry = (*Client)(nil)

// NewClient builds the registry client. The HTTP client follows at most
// three redirects, which covers proxies fronting the registry with a
// redirect to its real mount point.
func NewClient(cfg config.RegistryConfig, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{
			Timeout: 40 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		}
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		client:   client,
	}
}

// Authenticate exchanges the configured credentials for a bearer token. The
// token endpoint answers with one of a few field names depending on build.
func (c *Client) Authenticate(ctx context.Context) error {
	body, status, err := c.do(ctx, http.MethodPost, "/auth/token", map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("login failed HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}

	var resp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
		Data        struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}

	token := resp.Token
	if token == "" {
		token = resp.AccessToken
	}
	if token == "" {
		token = resp.Data.Token
	}
	if token == "" {
		return fmt.Errorf("login response did not contain a token: %s", strings.TrimSpace(string(body)))
	}

	c.token = token
	return nil
}

// Formats returns the registry's current format vocabulary. Anything but a
// JSON array is malformed and fatal to the run.
func (c *Client) Formats(ctx context.Context) ([]domain.Format, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/formats", nil)
	if err != nil {
		return nil, fmt.Errorf("formats request: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("formats returned HTTP %d: %s", status, strings.TrimSpace(string(body)))
	}

	var formats []domain.Format
	if err := json.Unmarshal(body, &formats); err != nil {
		return nil, fmt.Errorf("unexpected formats response (expected array): %s", strings.TrimSpace(string(body)))
	}
	return formats, nil
}

// CreateMeeting publishes one normalized payload. A non-2xx answer is
// returned as a *domain.RegistryError so the caller can count it as a
// per-record failure instead of aborting the run.
func (c *Client) CreateMeeting(ctx context.Context, m domain.Meeting) error {
	body, status, err := c.do(ctx, http.MethodPost, "/meetings", m)
	if err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}
	if status < 200 || status >= 300 {
		return &domain.RegistryError{StatusCode: status, Body: strings.TrimSpace(string(body))}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
