// Package backend talks to the ApiLens usage API.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

const (
	snapshotPath = "/proxy/stats/optimized"
	validatePath = "/auth/validate"
	healthPath   = "/health/detailed"

	maxBodyBytes = 4 << 20
)

var (
	ErrUnauthorized = errors.New("api key rejected")
	ErrMissingKey   = errors.New("api key is required")
)

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Is makes a 401 match ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

// Source provides usage snapshots and key checks.
type Source interface {
	Snapshot(ctx context.Context, apiKey string) (*analytics.Snapshot, error)
	ValidateKey(ctx context.Context, apiKey string) (*analytics.AuthResult, error)
	Health(ctx context.Context) (*analytics.Health, error)
}

// Client is the HTTP Source. It does not retry.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient targets baseURL, e.g. http://localhost:8001.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches the optimized usage stats for apiKey.
func (c *Client) Snapshot(ctx context.Context, apiKey string) (*analytics.Snapshot, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	var snap analytics.Snapshot
	if err := c.do(ctx, http.MethodGet, snapshotPath, apiKey, nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ValidateKey asks the backend whether apiKey is accepted.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) (*analytics.AuthResult, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}
	body, err := sonic.Marshal(map[string]string{"api_key": apiKey})
	if err != nil {
		return nil, fmt.Errorf("encode validate request: %w", err)
	}

	var result analytics.AuthResult
	if err := c.do(ctx, http.MethodPost, validatePath, "", body, &result); err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, ErrUnauthorized
	}
	return &result, nil
}

// Health reads the backend detailed health.
func (c *Client) Health(ctx context.Context) (*analytics.Health, error) {
	var health analytics.Health
	if err := c.do(ctx, http.MethodGet, healthPath, "", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
