package apicaller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/apicaller/internal/constants"
	apihttp "github.com/fivetwenty-io/apicaller/internal/http"
)

// Caller issues rate-limited calls against one absolute URL.
type Caller struct {
	url     string
	session *session
}

// NewCaller creates a caller bound to url.
func NewCaller(url string, config *Config) *Caller {
	return newCaller(url, newSession(config))
}

func newCaller(url string, s *session) *Caller {
	return &Caller{url: url, session: s}
}

// URL returns the URL the caller is bound to.
func (c *Caller) URL() string {
	return c.url
}

// Get issues a GET.
func (c *Caller) Get(ctx context.Context) (int, any, error) {
	return c.Call(ctx, http.MethodGet, nil)
}

// Post issues a POST with an optional payload.
func (c *Caller) Post(ctx context.Context, payload map[string]any) (int, any, error) {
	return c.Call(ctx, http.MethodPost, payload)
}

// Put issues a PUT with an optional payload.
func (c *Caller) Put(ctx context.Context, payload map[string]any) (int, any, error) {
	return c.Call(ctx, http.MethodPut, payload)
}

// Patch issues a PATCH with an optional payload.
func (c *Caller) Patch(ctx context.Context, payload map[string]any) (int, any, error) {
	return c.Call(ctx, http.MethodPatch, payload)
}

// Delete issues a DELETE.
func (c *Caller) Delete(ctx context.Context) (int, any, error) {
	return c.Call(ctx, http.MethodDelete, nil)
}

// Call waits for the shared limiter, sends one request and decodes the
// response. A 2xx response returns its status and decoded body: any JSON
// value in JSON mode (nil for an empty body), the body text otherwise. Any
// other status returns a *CallError. Failures without a response wrap
// ErrTransport. If ctx ends while waiting for the limiter, the context error
// is returned and no request is sent.
func (c *Caller) Call(ctx context.Context, method string, payload map[string]any) (int, any, error) {
	method = strings.ToUpper(method)
	if !supportedMethod(method) {
		return 0, nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	req, err := c.buildRequest(method, payload)
	if err != nil {
		return 0, nil, err
	}

	var (
		resp    *apihttp.Response
		elapsed time.Duration
		sent    bool
	)

	wait, err := c.session.limiterFor().Do(ctx, func() error {
		start := time.Now()
		sent = true

		var doErr error

		resp, doErr = c.session.transport.Do(ctx, req)
		elapsed = time.Since(start)

		return doErr
	})
	c.session.metrics.RecordWait(wait)

	if !sent {
		return 0, nil, err
	}

	if err != nil {
		c.session.metrics.RecordCall(method, 0, elapsed)
		c.session.metrics.RecordError(method, "transport")

		return 0, nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.session.metrics.RecordCall(method, resp.StatusCode, elapsed)

	return c.handleResponse(method, resp)
}

func (c *Caller) buildRequest(method string, payload map[string]any) (*apihttp.Request, error) {
	headers := map[string]string{
		constants.HeaderAccept: constants.ContentTypeJSON,
	}

	if c.session.token != "" {
		headers[constants.HeaderAuthorization] = c.session.authScheme + " " + c.session.token
	}

	req := &apihttp.Request{
		Method:  method,
		URL:     c.url,
		Headers: headers,
	}

	if len(payload) == 0 {
		return req, nil
	}

	if c.session.encoding == EncodingForm {
		req.Body = []byte(formValues(payload).Encode())
		headers[constants.HeaderContentType] = constants.ContentTypeForm

		return req, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload for %s %s: %w", method, c.url, err)
	}

	req.Body = body
	headers[constants.HeaderContentType] = constants.ContentTypeJSON

	return req, nil
}

func (c *Caller) handleResponse(method string, resp *apihttp.Response) (int, any, error) {
	if resp.StatusCode < constants.HTTPStatusOK || resp.StatusCode >= constants.HTTPStatusMultipleChoices {
		c.session.metrics.RecordError(method, "status")
		c.session.logger.Warn("API call failed", map[string]interface{}{
			"method": method,
			"url":    c.url,
			"status": resp.StatusCode,
		})

		return resp.StatusCode, nil, &CallError{
			Method:     method,
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	if c.session.encoding == EncodingForm {
		return resp.StatusCode, string(resp.Body), nil
	}

	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return resp.StatusCode, nil, nil
	}

	var decoded any

	err := json.Unmarshal(resp.Body, &decoded)
	if err != nil {
		c.session.metrics.RecordError(method, "decode")

		return resp.StatusCode, nil, &CallError{
			Method:     method,
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Err:        fmt.Errorf("decoding response: %w", err),
		}
	}

	return resp.StatusCode, decoded, nil
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// formValues flattens a payload into form fields. Slices become repeated keys.
func formValues(payload map[string]any) url.Values {
	values := url.Values{}

	for key, value := range payload {
		switch v := value.(type) {
		case nil:
			continue
		case []string:
			for _, item := range v {
				values.Add(key, item)
			}
		case []any:
			for _, item := range v {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}

	return values
}
