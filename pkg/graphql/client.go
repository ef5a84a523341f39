package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "go-storyform"
	maxErrorBody     = 4 << 10
)

// Session is the read-only authentication context handed to the client. It
// replaces ambient "is logged in" state so callers can test flows in
// isolation.
type Session struct {
	Authenticated bool
	Token         string
	Cookies       []*http.Cookie
}

// Request describes a single GraphQL call. Free-form values belong in
// Variables; Query should be a constant document.
type Request struct {
	Query           string
	Variables       map[string]any
	OperationName   string
	WithCredentials bool
}

// Doer is the subset of *Client used by fetchers and the submission
// controller.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSession attaches the session whose credentials are sent on
// credentialed requests.
func WithSession(session Session) Option {
	return func(c *Client) {
		c.session = session
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(agent); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// Client posts GraphQL documents to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	session    Session
	logger     *zap.Logger
	userAgent  string
}

var _ Doer = (*Client)(nil)

// New constructs a Client for endpoint.
func New(endpoint string, options ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("graphql: endpoint is required")
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

type requestBody struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type responseBody struct {
	Data   json.RawMessage `json:"data"`
	Errors []ServerError   `json:"errors,omitempty"`
}

// Do posts req and decodes the "data" member of the response into out. A nil
// out discards the data after checking it is present.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	op := operationLabel(req)
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}

	payload, err := json.Marshal(requestBody{
		Query:         req.Query,
		Variables:     req.Variables,
		OperationName: req.OperationName,
	})
	if err != nil {
		return fmt.Errorf("graphql: %s: encode request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("graphql: %s: build request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.WithCredentials {
		c.attachCredentials(httpReq)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("graphql request",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Bool("credentials", req.WithCredentials),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	var body responseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &NetworkError{Op: op, Err: err}
		}
		return &MalformedResponseError{Op: op, Reason: "decode body", Err: err}
	}
	if len(body.Errors) > 0 {
		return &ResponseError{Op: op, Errors: body.Errors}
	}
	if len(body.Data) == 0 || bytes.Equal(body.Data, []byte("null")) {
		return &MalformedResponseError{Op: op, Reason: "missing data"}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return &MalformedResponseError{Op: op, Reason: "decode data", Err: err}
	}
	return nil
}

func (c *Client) attachCredentials(req *http.Request) {
	for _, cookie := range c.session.Cookies {
		if cookie != nil {
			req.AddCookie(cookie)
		}
	}
	if token := strings.TrimSpace(c.session.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func operationLabel(req Request) string {
	if name := strings.TrimSpace(req.OperationName); name != "" {
		return name
	}
	return "request"
}
