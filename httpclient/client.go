package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skillsenselab/voicenotes/errors"
)

// TokenSource supplies a bearer token for outgoing requests. Implementations
// may mint a fresh token per call.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func() (string, error)

func (f TokenFunc) Token() (string, error) { return f() }

// Request describes one HTTP call.
type Request struct {
	Method  string
	Path    string
	Body    any
	Query   map[string]string
	Headers map[string]string
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Client is a JSON-focused HTTP client bound to one upstream service.
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a bearer token source applied to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do executes a request. The returned error is an *errors.AppError for
// transport failures and non-2xx statuses; for the latter the Response is
// also returned so callers can inspect the body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(req.Method + " " + req.Path).WithCause(err)
		}
		return nil, errors.ConnectionFailed(c.config.BaseURL).WithCause(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ConnectionFailed(c.config.BaseURL).WithCause(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}
	if classErr := classifyStatusCode(resp.StatusCode, body); classErr != nil {
		return result, classErr
	}
	return result, nil
}

// buildRequest constructs an *http.Request from the client config and request.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("encode request body: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, errors.Internal(fmt.Errorf("obtain service token: %w", err))
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// classifyStatusCode maps a non-2xx status to an application error. The
// response body is attached as a detail for diagnostics.
func classifyStatusCode(status int, body []byte) *errors.AppError {
	if status < 400 {
		return nil
	}

	var appErr *errors.AppError
	switch {
	case status == http.StatusBadRequest:
		appErr = errors.Validation("upstream rejected request")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		appErr = errors.Unauthorized("upstream rejected credentials")
	case status == http.StatusNotFound:
		appErr = errors.NotFound("resource", "")
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		appErr = errors.Timeout("upstream request")
	case status == http.StatusServiceUnavailable:
		appErr = errors.ServiceUnavailable("upstream")
	default:
		appErr = errors.ExternalServiceError("upstream", fmt.Errorf("status %d", status))
	}

	if len(body) > 0 {
		appErr = appErr.WithDetail("body", string(body))
	}
	return appErr.WithDetail("status", status)
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
