package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("api: unauthorized")
	ErrNoBaseURL    = errors.New("api: base url is required")
)

const (
	RequestIDHeader = "X-Request-ID"
	defaultTimeout  = 15 * time.Second
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the request goes out without an Authorization header.
type TokenSource interface {
	Token() string
}

type UnauthorizedHandler interface {
	HandleUnauthorized()
}

// APIError is a non-2xx response, or a 2xx whose envelope says
// success=false.
type APIError struct {
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

func (e *APIError) FieldError(field string) string {
	if msgs := e.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// MessageOr returns the server message carried by err, or fallback. This is
// what the screens show on a failed mutation.
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type envelope[T any] struct {
	Success *bool               `json:"success"`
	Message string              `json:"message"`
	Data    T                   `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

type Client struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	userAgent      string
	timeout        time.Duration
	newRequestID   func() string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(cl *Client) { cl.tokens = ts }
}

func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(cl *Client) { cl.onUnauthorized = h }
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

// WithTimeout applies to a copy of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL:      u,
		http:         &http.Client{Timeout: defaultTimeout},
		userAgent:    "tasktag",
		newRequestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 && c.http.Timeout != c.timeout {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func do[T any](ctx context.Context, c *Client, method, path string, auth bool, body any) (T, string, error) {
	var zero T
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, "", fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return zero, "", fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, c.newRequestID())
	if auth && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, "", fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, "", fmt.Errorf("api: read %s %s: %w", method, path, err)
	}

	var env envelope[T]
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized.HandleUnauthorized()
		}
		return zero, env.Message, apiErr
	}
	if decodeErr != nil {
		return zero, "", fmt.Errorf("api: decode %s %s: %w", method, path, decodeErr)
	}
	if env.Success != nil && !*env.Success {
		return zero, env.Message, &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return env.Data, env.Message, nil
}
