// Package mailtm is a client for mail.tm-compatible temporary mailbox providers.
package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/emailgenx/emailgenx/internal/util"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.mail.tm"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client talks to the provider's REST API. It performs no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with its own http.Client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTPClient(baseURL, timeout, nil)
}

// NewClientWithHTTPClient creates a client using httpClient for transport.
func NewClientWithHTTPClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the provider root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListDomains returns the domains currently offered for new accounts.
func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	body, err := c.do(ctx, c.httpClient, "list domains", http.MethodGet, "/domains", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Domain]("list domains", body)
}

// CreateAccount registers a new mailbox with the given credentials.
func (c *Client) CreateAccount(ctx context.Context, creds Credentials) (*Account, error) {
	body, err := c.do(ctx, c.httpClient, "create account", http.MethodPost, "/accounts", creds)
	if err != nil {
		return nil, err
	}
	var account Account
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("mailtm create account: decode response: %w", err)
	}
	return &account, nil
}

// RequestToken exchanges mailbox credentials for a bearer token.
func (c *Client) RequestToken(ctx context.Context, creds Credentials) (*Token, error) {
	body, err := c.do(ctx, c.httpClient, "request token", http.MethodPost, "/token", creds)
	if err != nil {
		return nil, err
	}
	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("mailtm request token: decode response: %w", err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("mailtm request token: empty token in response")
	}
	return &token, nil
}

// ListMessages returns the first page of messages for the mailbox owning accessToken,
// in provider order.
func (c *Client) ListMessages(ctx context.Context, accessToken string) ([]Message, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	authed := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), src)
	authed.Timeout = c.httpClient.Timeout

	body, err := c.do(ctx, authed, "list messages", http.MethodGet, "/messages", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Message]("list messages", body)
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mailtm %s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("mailtm %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/ld+json, application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mailtm %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("mailtm %s: read response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: util.TruncateBytes(body)}
	}
	return body, nil
}

// decodeList accepts both the JSON-LD wrapper and a bare JSON array.
func decodeList[T any](op string, body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("mailtm %s: decode response: %w", op, err)
		}
		return items, nil
	}
	var wrapped collection[T]
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("mailtm %s: decode response: %w", op, err)
	}
	return wrapped.Members, nil
}
