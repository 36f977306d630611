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

	"github.com/dmitrijs2005/taskflow/internal/client/metrics"
	"github.com/dmitrijs2005/taskflow/internal/client/models"
	"github.com/dmitrijs2005/taskflow/internal/logging"
	"github.com/dmitrijs2005/taskflow/internal/netx"
)

const (
	headerRequestID = "X-Request-ID"
	defaultTimeout  = 10 * time.Second
)

// TokenSource supplies the credential attached to each request.
type TokenSource interface {
	Token() (string, bool)
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option { return func(c *Client) { c.logger = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(c *Client) { c.metrics = m } }

// Client talks to the backend rooted at baseURL (e.g. http://host/api).
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  logging.Logger
	metrics *metrics.Metrics
	newID   func() string
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logging.Nop(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) Projects() *ProjectsAPI { return &ProjectsAPI{c: c} }
func (c *Client) Tasks() *TasksAPI       { return &TasksAPI{c: c} }
func (c *Client) Outbox() *OutboxAPI     { return &OutboxAPI{c: c} }
func (c *Client) OAuth() *OAuthAPI       { return &OAuthAPI{c: c} }

type errorInfo struct {
	Code    models.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorInfo      `json:"error"`
}

// request describes one call. route is the path template used as a metric
// label.
type request struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
}

// call issues r and decodes the envelope's data into a T.
func call[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T
	status, body, err := c.send(ctx, r)
	if err != nil {
		return out, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return out, &NetworkFailure{Method: r.method, Path: r.path, Status: status, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !env.Success {
		return out, envelopeFailure(r, status, env.Error)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &NetworkFailure{Method: r.method, Path: r.path, Status: status, Err: fmt.Errorf("decode data: %w", err)}
	}
	return out, nil
}

// callText issues r and returns the raw 2xx body.
func callText(ctx context.Context, c *Client, r request) (string, error) {
	_, body, err := c.send(ctx, r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func envelopeFailure(r request, status int, info *errorInfo) *NetworkFailure {
	f := &NetworkFailure{Method: r.method, Path: r.path, Status: status}
	if info != nil {
		f.Code, f.Message = info.Code, info.Message
	} else {
		f.Message = "unsuccessful response without error details"
	}
	return f
}

// send performs the HTTP exchange. It returns the body of a 2xx response;
// anything else becomes a *NetworkFailure.
func (c *Client) send(ctx context.Context, r request) (int, []byte, error) {
	req, err := c.newRequest(ctx, r)
	if err != nil {
		return 0, nil, err
	}
	reqID := req.Header.Get(headerRequestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(r.method, r.route, 0, elapsed)
		c.logger.Warn(ctx, "request failed", "method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return 0, nil, &NetworkFailure{Method: r.method, Path: r.path, Err: err}
	}

	c.metrics.ObserveRequest(r.method, r.route, resp.StatusCode, elapsed)
	c.logger.Debug(ctx, "request", "method", r.method, "path", r.path, "status", resp.StatusCode,
		"duration", elapsed, "request_id", reqID)

	body, err := netx.ReadBody(resp)
	if err != nil {
		return resp.StatusCode, nil, &NetworkFailure{Method: r.method, Path: r.path, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			return resp.StatusCode, nil, envelopeFailure(r, resp.StatusCode, env.Error)
		}
		return resp.StatusCode, nil, &NetworkFailure{
			Method: r.method, Path: r.path, Status: resp.StatusCode, Message: netx.Snippet(body, 200),
		}
	}
	return resp.StatusCode, body, nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, c.newID())
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

// AsFailure extracts a *NetworkFailure from err.
func AsFailure(err error) (*NetworkFailure, bool) {
	var f *NetworkFailure
	ok := errors.As(err, &f)
	return f, ok
}
