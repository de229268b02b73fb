package clickup

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
)

const (
	// DefaultBaseURL is the ClickUp API v2 root.
	DefaultBaseURL = "https://api.clickup.com/api/v2"

	// defaultTimeout bounds a single API call.
	defaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Fetcher is the transport capability the pager and tools consume.
// Implementations return the raw JSON body of a successful response and a
// *APIError for non-2xx responses.
type Fetcher interface {
	Fetch(ctx context.Context, method, endpoint string, body any, query url.Values) (json.RawMessage, error)
}

// Client talks to the ClickUp REST API with a personal or OAuth token.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout. The current http.Client is
// copied first so a shared client is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger attaches a logger; requests are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client authenticating with token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		userAgent:  "clickup-mcp",
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one API call. endpoint is relative to the base URL
// ("/team/123/task"). body, when non-nil, is sent as JSON.
func (c *Client) Fetch(ctx context.Context, method, endpoint string, body any, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("clickup request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("clickup %s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("clickup request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp, method, endpoint)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("clickup %s %s: response is not valid JSON", method, endpoint)
	}
	return json.RawMessage(data), nil
}

// decodeAPIError reads ClickUp's {"err": ..., "ECODE": ...} error body.
func decodeAPIError(resp *http.Response, method, endpoint string) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Endpoint:   endpoint,
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Err   string `json:"err"`
		ECode string `json:"ECODE"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		apiErr.Message = payload.Err
		apiErr.Code = payload.ECode
	} else if s := strings.TrimSpace(string(data)); s != "" {
		apiErr.Message = s
	}
	return apiErr
}

// GetTask fetches a single task with its custom fields.
func GetTask(ctx context.Context, f Fetcher, taskID string) (*Task, error) {
	data, err := f.Fetch(ctx, http.MethodGet, "/task/"+url.PathEscape(taskID), nil, nil)
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", taskID, err)
	}
	return &task, nil
}

// DecodeTaskPage decodes a paged task response.
func DecodeTaskPage(data json.RawMessage) (*TaskPage, error) {
	var page TaskPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decoding task page: %w", err)
	}
	return &page, nil
}

// TasksEndpoint returns the task collection endpoint: a list's tasks when
// listID is set, otherwise the team-wide filtered task search.
func TasksEndpoint(teamID, listID string) string {
	if listID != "" {
		return "/list/" + url.PathEscape(listID) + "/task"
	}
	return "/team/" + url.PathEscape(teamID) + "/task"
}
