// Package client is a typed HTTP client for the opsboard API. Lookup misses
// and uniqueness conflicts surface as ErrNotFound and ErrConflict so callers
// can tell them apart from transport failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"opsboard/pkg/circuitbreaker"
)

var (
	// ErrNotFound marks a 404 from the API.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a 409, e.g. a second brief on a task.
	ErrConflict = errors.New("conflict")
)

// APIError is any other non-2xx response, carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *circuitbreaker.CircuitBreaker

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithBreaker(cfg circuitbreaker.Config) Option {
	return func(c *Client) { c.cb = circuitbreaker.New(cfg) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		cb:      circuitbreaker.New(circuitbreaker.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token used on collaboration routes. Login
// calls it automatically.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func errorMessage(data []byte, status int) string {
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return http.StatusText(status)
}

// do performs one API call. Transport failures and 5xx responses count
// against the breaker; 4xx responses do not.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	var (
		status  int
		payload []byte
	)
	err = c.cb.Execute(func() error {
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return fmt.Errorf("request %s %s: %w", method, path, doErr)
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("read response: %w", readErr)
		}
		status = resp.StatusCode
		payload = data

		if status >= http.StatusInternalServerError {
			return &APIError{Status: status, Message: errorMessage(data, status)}
		}
		return nil
	})
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: %w", errorMessage(payload, status), ErrNotFound)
	case status == http.StatusConflict:
		return fmt.Errorf("%s: %w", errorMessage(payload, status), ErrConflict)
	case status >= http.StatusBadRequest:
		return &APIError{Status: status, Message: errorMessage(payload, status)}
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

type idResponse struct {
	ID int `json:"id"`
}

type messageResponse struct {
	Message string `json:"message"`
}
