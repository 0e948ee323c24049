// Package platform is the client for the learning platform: credential
// sign-in and GraphQL queries made with the returned token.
package platform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rewired-gh/xpgraph/internal/logger"
)

const (
	signinPath  = "/api/auth/signin"
	graphqlPath = "/api/graphql-engine/v1/graphql"
)

var (
	// ErrInvalidCredentials is returned when the platform rejects a sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when the user query comes back empty.
	ErrUserNotFound = errors.New("user data not found in response")
)

// ClientConfig holds retry and transport settings for Client.
type ClientConfig struct {
	MaxRetries          int
	RetryDelayBase      time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Client provides access to the platform API
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        ClientConfig
}

// NewClient creates a new platform client. Zero values in cfg fall back to
// 3 retries, a 1s delay base and the default transport limits.
func NewClient(baseURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 10
	}
	if cfg.MaxIdleConnsPerHost <= 0 {
		cfg.MaxIdleConnsPerHost = 2
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		cfg: cfg,
	}
}

// SignIn exchanges login (username or email) and password for a token.
func (c *Client) SignIn(ctx context.Context, login, password string) (string, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(login + ":" + password))

	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+signinPath, nil, func(req *http.Request) {
		req.Header.Set("Authorization", "Basic "+credentials)
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sign in failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read sign in response: %w", err)
	}
	token, err := parseToken(body)
	if err != nil {
		return "", err
	}
	return token, nil
}

// parseToken accepts either a bare JSON string or an object with a token field.
func parseToken(body []byte) (string, error) {
	var token string
	if err := json.Unmarshal(body, &token); err == nil && token != "" {
		return token, nil
	}

	var wrapped struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Token != "" {
		return wrapped.Token, nil
	}
	return "", errors.New("sign in response contains no token")
}

// graphqlError is one entry of a GraphQL "errors" array.
type graphqlError struct {
	Message string `json:"message"`
}

// Query runs a GraphQL query with token and decodes the "data" member into out.
func (c *Client) Query(ctx context.Context, token, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+graphqlPath, payload, func(req *http.Request) {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
	})
	if err != nil {
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to fetch data: status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql error: %s", strings.Join(msgs, "; "))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return errors.New("graphql response has no data")
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// doRequest performs an HTTP request with retry logic. Transport errors and
// 5xx responses are retried; any other response is returned to the caller.
func (c *Client) doRequest(ctx context.Context, method, url string, body []byte, decorate func(*http.Request)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.RetryDelayBase * time.Duration(attempt)
			logger.Debug("Retrying %s %s in %v (attempt %d/%d): %v", method, url, delay, attempt+1, c.cfg.MaxRetries, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if decorate != nil {
			decorate(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
