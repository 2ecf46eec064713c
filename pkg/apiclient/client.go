// Package apiclient is a typed Go client for the Learner Hub REST API.
package apiclient

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

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client issues requests against the API and decodes its { data, message, status } envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	token      string
	logger     *zap.Logger
	cache      *tagCache

	SamplePlans      *SamplePlans
	Questions        *Questions
	SessionTypes     *SessionTypes
	Acknowledgements *Acknowledgements
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client requests are sent through. The client is copied,
// so the caller's value is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout bounds every request regardless of option order. Non-positive values keep
// the HTTP client's own timeout, or the default when it has none.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger enables debug logging of requests.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for baseURL, e.g. "https://host/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
		cache:      newTagCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.httpClient
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout <= 0:
		hc.Timeout = defaultTimeout
	}
	c.httpClient = &hc
	c.SamplePlans = &SamplePlans{c: c}
	c.Questions = &Questions{c: c}
	c.SessionTypes = &SessionTypes{c: c}
	c.Acknowledgements = &Acknowledgements{c: c}
	return c, nil
}

// Invalidate drops cached reads under the given tags.
func (c *Client) Invalidate(tags ...string) {
	c.cache.invalidate(tags...)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        interface{}
	raw         io.Reader
	contentType string
}

// Path joins escaped segments under the base URL.
func Path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}

func (c *Client) do(ctx context.Context, req request, out interface{}) (string, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.raw
	contentType := req.contentType
	if body == nil && req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return "", fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Message: genericMessage, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Status: resp.StatusCode, Message: genericMessage, Err: err}
	}
	c.logger.Debug("api request",
		zap.String("method", req.method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(payload, &env)
	if resp.StatusCode >= http.StatusBadRequest {
		return "", newError(resp, env, decodeErr == nil)
	}
	if len(payload) == 0 || resp.StatusCode == http.StatusNoContent {
		return "", nil
	}
	if decodeErr != nil {
		return "", &Error{Status: resp.StatusCode, Message: genericMessage, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("decode data: %w", err)
		}
	}
	return env.Message, nil
}

// cachedGet serves a GET from the tag cache or fetches and memoises it.
func (c *Client) cachedGet(ctx context.Context, tag, path string, query url.Values, out interface{}) error {
	key := path + "?" + query.Encode()
	if raw, ok := c.cache.get(tag, key); ok {
		return json.Unmarshal(raw, out)
	}
	if _, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, out); err != nil {
		return err
	}
	if raw, err := json.Marshal(out); err == nil {
		c.cache.set(tag, key, raw)
	}
	return nil
}

// IsStatus reports whether err is an API error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}
