// Package http is the transport used by callers: one request against one
// absolute URL, with socket-level retries delegated to go-retryablehttp.
// HTTP statuses are returned as-is and never retried here.
package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/apicaller/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrRequestFailed = errors.New("request failed")
	ErrURLRequired   = errors.New("request URL is required")
)

// Logger is the structured logging seam of the transport.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the raw outcome of a call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client sends requests through a retryable HTTP client.
type Client struct {
	client    *retryablehttp.Client
	logger    Logger
	debug     bool
	userAgent string
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger       Logger
	debug        bool
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	skipVerify   bool
	httpClient   *http.Client
}

// WithLogger sets the logger used for debug and retry messages.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithRetryConfig configures retries of transport failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(o *options) {
		if retryMax >= 0 {
			o.retryMax = retryMax
		}

		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *options) {
		o.skipVerify = skip
	}
}

// WithHTTPClient replaces the underlying HTTP client. The TLS and timeout
// options are ignored when it is set.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// NewClient creates a transport client.
func NewClient(opts ...Option) *Client {
	cfg := &options{
		timeout:      constants.DefaultHTTPTimeout,
		retryMax:     constants.DefaultRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
		userAgent:    constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = buildHTTPClient(cfg)
	retryClient.RetryMax = cfg.retryMax
	retryClient.RetryWaitMin = cfg.retryWaitMin
	retryClient.RetryWaitMax = cfg.retryWaitMax
	retryClient.CheckRetry = transportRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if cfg.logger != nil {
		retryClient.Logger = &leveledLogger{logger: cfg.logger}
		retryClient.RequestLogHook = retryLogHook(cfg.logger)
	}

	return &Client{
		client:    retryClient,
		logger:    cfg.logger,
		debug:     cfg.debug,
		userAgent: cfg.userAgent,
	}
}

func buildHTTPClient(cfg *options) *http.Client {
	if cfg.httpClient != nil {
		return cfg.httpClient
	}

	transport := cleanhttp.DefaultPooledTransport()
	if cfg.skipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- explicitly requested by the caller
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.timeout,
	}
}

// transportRetryPolicy retries connection-level failures only. A response
// with any status code is final.
func transportRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err == nil {
		return false, nil
	}

	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// Do sends the request and returns the raw response. An error is returned
// only when no response could be obtained.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.URL == "" {
		return nil, ErrURLRequired
	}

	var body interface{}
	if len(req.Body) > 0 {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.userAgent != "" {
		httpReq.Header.Set(constants.HeaderUserAgent, c.userAgent)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	c.logRequest(req)

	start := time.Now()

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, req.Method, req.URL, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logResponse(req, resp, time.Since(start))

	return resp, nil
}

func (c *Client) logRequest(req *Request) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method":    req.Method,
		"url":       req.URL,
		"body_size": len(req.Body),
	})
}

func (c *Client) logResponse(req *Request, resp *Response, elapsed time.Duration) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"method":    req.Method,
		"url":       req.URL,
		"status":    resp.StatusCode,
		"body_size": len(resp.Body),
		"duration":  elapsed.String(),
	})
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

// Debug is dropped: per-attempt request lines duplicate the client's own
// debug logging, and retries are reported by retryLogHook.
func (l *leveledLogger) Debug(string, ...interface{}) {}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func retryLogHook(logger Logger) retryablehttp.RequestLogHook {
	return func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}

		logger.Warn("Retrying request", map[string]interface{}{
			"method":  req.Method,
			"url":     req.URL.String(),
			"attempt": attempt,
		})
	}
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
