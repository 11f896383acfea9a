// Package api is the HTTP client for the remote todo service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/amonks/taskdash/internal/ui"
	"github.com/amonks/taskdash/task"
)

const maxErrorMessageWidth = 200

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// TokenSource supplies the bearer token for authorized calls.
type TokenSource interface {
	Token() string
}

// Client calls the todo service.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	logger  *zap.Logger
	limiter *rate.Limiter
	loc     *time.Location
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocation sets the zone in which timestamps without an offset are
// read. It should match the zone requests are built in.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithRateLimit caps outbound requests per second. Zero or less means
// unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a client for the given base URL. tokens may be nil for a
// client that only logs in and signs up.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: NormalizeBaseURL(baseURL),
		client:  &http.Client{},
		tokens:  tokens,
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 0),
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeBaseURL trims trailing slashes and adds a scheme when missing.
func NormalizeBaseURL(raw string) string {
	baseURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if baseURL == "" {
		return DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return baseURL
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	resp, err := c.send(ctx, request{method: http.MethodPost, path: "/api/users/login", body: creds})
	if err != nil {
		return "", err
	}
	if resp.code == http.StatusUnauthorized {
		return "", fmt.Errorf("login: %w", ErrAuthentication)
	}
	if err := resp.statusError(); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	token := decodeToken(resp.body)
	if token == "" {
		return "", fmt.Errorf("login: %w: server returned no token", ErrAuthentication)
	}
	return token, nil
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, creds Credentials) error {
	resp, err := c.send(ctx, request{method: http.MethodPost, path: "/api/users/signup", body: creds})
	if err != nil {
		return err
	}
	if resp.code == http.StatusConflict {
		return fmt.Errorf("signup: %w", ErrConflict)
	}
	if err := resp.statusError(); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// ListTasks returns every task of the signed-in user.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	resp, err := c.sendAuthorized(ctx, request{method: http.MethodGet, path: "/api/todo"})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks, err := decodeTasks(resp.body, c.loc)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// SearchTasks returns the tasks matching a server-side search.
func (c *Client) SearchTasks(ctx context.Context, query string) ([]task.Task, error) {
	resp, err := c.sendAuthorized(ctx, request{
		method: http.MethodGet,
		path:   "/api/todo/search",
		query:  url.Values{"q": {query}},
	})
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	tasks, err := decodeTasks(resp.body, c.loc)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req CreateRequest) error {
	if _, err := c.sendAuthorized(ctx, request{method: http.MethodPost, path: "/api/todo", body: req}); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask replaces a task's title, description, and due date.
func (c *Client) UpdateTask(ctx context.Context, req UpdateRequest) error {
	if _, err := c.sendAuthorized(ctx, request{method: http.MethodPut, path: "/api/todo/update", body: req}); err != nil {
		return fmt.Errorf("update task %s: %w", req.ID, err)
	}
	return nil
}

// UpdateTaskStatus sets a task's status.
func (c *Client) UpdateTaskStatus(ctx context.Context, id task.ID, status task.Status) error {
	body := StatusRequest{ID: id.String(), Status: status}
	if _, err := c.sendAuthorized(ctx, request{method: http.MethodPut, path: "/api/todo/status", body: body}); err != nil {
		return fmt.Errorf("update task %s status: %w", id, err)
	}
	return nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id task.ID) error {
	_, err := c.sendAuthorized(ctx, request{
		method: http.MethodDelete,
		path:   "/api/todo/delete",
		query:  url.Values{"id": {id.String()}},
	})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	return nil
}

type request struct {
	method     string
	path       string
	query      url.Values
	body       any
	authorized bool
}

type response struct {
	code int
	body []byte
}

func (r response) ok() bool {
	return r.code >= 200 && r.code < 300
}

func (r response) statusError() error {
	if r.ok() {
		return nil
	}
	return &StatusError{Code: r.code, Message: errorMessage(r.body)}
}

// sendAuthorized sends a request with the bearer token and maps 401 and 403
// to ErrSessionExpired.
func (c *Client) sendAuthorized(ctx context.Context, req request) (response, error) {
	req.authorized = true
	resp, err := c.send(ctx, req)
	if err != nil {
		return response{}, err
	}
	if resp.code == http.StatusUnauthorized || resp.code == http.StatusForbidden {
		return response{}, ErrSessionExpired
	}
	if err := resp.statusError(); err != nil {
		return response{}, err
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, req request) (response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return response{}, err
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return response{}, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return response{}, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.authorized && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, ctx.Err()
		}
		c.logger.Debug("request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return response{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	c.logger.Debug("request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return response{code: httpResp.StatusCode, body: data}, nil
}

// decodeToken accepts {"token": "..."}, a JSON string, or a plain-text body.
func decodeToken(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '{':
		var payload tokenResponse
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return ""
		}
		return strings.TrimSpace(payload.Token)
	case '"':
		var token string
		if err := json.Unmarshal(trimmed, &token); err != nil {
			return ""
		}
		return strings.TrimSpace(token)
	default:
		return string(trimmed)
	}
}

func decodeTasks(body []byte, loc *time.Location) ([]task.Task, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []task.Task{}, nil
	}
	tasks, err := task.DecodeTasks(trimmed, loc)
	if err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// errorMessage extracts a message from {"error": ...}, {"message": ...}, or
// a short plain-text body.
func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(trimmed, &payload); err == nil {
		for _, key := range []string{"error", "message"} {
			if message, ok := payload[key].(string); ok && message != "" {
				return message
			}
		}
		return ""
	}
	return ui.Truncate(string(trimmed), maxErrorMessageWidth)
}
