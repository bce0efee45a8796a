// Package http is the transport used by the AAP client: authenticated JSON
// requests with optional retries, rate limiting and TLS relaxation, and
// translation of AAP error payloads into typed errors.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/aap-client/internal/auth"
	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Logger is the logging capability the transport needs.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is a single API call. Path is either relative to the base URL
// ("api/controller/v2/projects/"), host absolute ("/api/...?page=2") or a
// full URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Headers    stdhttp.Header
	Body       []byte
}

// Client performs authenticated requests against one AAP instance.
type Client struct {
	baseURL       *url.URL
	baseURLErr    error
	tokenManager  auth.TokenManager
	httpClient    *retryablehttp.Client
	logger        Logger
	debug         bool
	userAgent     string
	limiter       *rate.Limiter
	skipTLSVerify bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables logging of request and response bodies.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryConfig enables retries of connection errors, 429 and 5xx.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.skipTLSVerify = skip
	}
}

// WithRateLimit caps the request rate of the client.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient creates a transport for baseURL. A nil token manager sends
// unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")

	client := &Client{
		baseURL:      parsed,
		baseURLErr:   err,
		tokenManager: tokenManager,
		httpClient:   retryClient,
		logger:       aap.NoopLogger{},
		userAgent:    constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.skipTLSVerify {
		transport, ok := retryClient.HTTPClient.Transport.(*stdhttp.Transport)
		if ok {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicit opt-in via configuration
		}

		client.logger.Warn("TLS certificate verification is disabled", map[string]interface{}{
			"plugin":   constants.PluginID,
			"base_url": baseURL,
		})
	}

	return client
}

// BaseURL returns the base URL without trailing slash.
func (c *Client) BaseURL() string {
	if c.baseURL == nil {
		return ""
	}

	return strings.TrimSuffix(c.baseURL.String(), "/")
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: stdhttp.MethodGet, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: stdhttp.MethodPost, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: stdhttp.MethodDelete, Path: path})
}

// Do executes req. On HTTP errors the response is returned together with
// the translated error.
//
//nolint:funlen // request lifecycle reads best in one place
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var rawBody interface{}

	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		rawBody = payload
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, rawBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", requestID)

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.limiter != nil {
		err = c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	fields := map[string]interface{}{
		"plugin":     constants.PluginID,
		"method":     req.Method,
		"url":        target,
		"request_id": requestID,
	}

	c.logger.Info("HTTP Request", fields)

	if c.debug && rawBody != nil {
		c.logger.Debug("HTTP Request Body", withField(fields, "body", string(rawBody.([]byte))))
	}

	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		c.logger.Error("HTTP Request Failed", withField(fields, "error", err.Error()))

		return nil, &aap.TransportError{Method: req.Method, URL: target, Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &aap.TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	fields = withField(fields, "status_code", resp.StatusCode)
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if c.debug {
		c.logger.Debug("HTTP Response Body", withField(fields, "body", string(body)))
	}

	if resp.StatusCode >= stdhttp.StatusBadRequest {
		apiErr := ParseErrorResponse(resp.StatusCode, body)
		c.logger.Error("HTTP Response Error", withField(fields, "error", apiErr.Error()))

		return response, apiErr
	}

	c.logger.Info("HTTP Response", fields)

	return response, nil
}

// resolve builds the absolute request URL.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	if c.baseURLErr != nil {
		return "", fmt.Errorf("parsing base URL: %w", c.baseURLErr)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parsing request path %q: %w", path, err)
	}

	var target *url.URL

	switch {
	case ref.IsAbs():
		target = ref
	case strings.HasPrefix(ref.Path, "/"):
		target = c.baseURL.ResolveReference(ref)
	default:
		target = c.baseURL.JoinPath(ref.Path)
		target.RawQuery = ref.RawQuery
	}

	if len(query) > 0 {
		values := target.Query()

		for key, vals := range query {
			for _, val := range vals {
				values.Add(key, val)
			}
		}

		target.RawQuery = values.Encode()
	}

	return target.String(), nil
}

func withField(fields map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}

	out[key] = value

	return out
}
