package apicaller

import (
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fivetwenty-io/apicaller/internal/constants"
	apihttp "github.com/fivetwenty-io/apicaller/internal/http"
	"github.com/fivetwenty-io/apicaller/internal/metrics"
	"github.com/fivetwenty-io/apicaller/internal/ratelimit"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Encoding selects how payloads are sent and responses decoded.
type Encoding int

const (
	// EncodingJSON sends JSON payloads and decodes JSON responses.
	EncodingJSON Encoding = iota
	// EncodingForm sends form-encoded payloads and returns responses as text.
	EncodingForm
)

// String returns the encoding name.
func (e Encoding) String() string {
	if e == EncodingForm {
		return "form"
	}

	return "json"
}

// Limiter spaces calls by a minimum interval. One limiter is shared by every
// caller that uses it; see DefaultLimiter.
type Limiter = ratelimit.Limiter

// NewLimiter creates a limiter. clk may be nil to use the wall clock.
func NewLimiter(interval time.Duration, clk clock.Clock) *Limiter {
	return ratelimit.New(interval, ratelimit.WithClock(clk))
}

// DefaultLimiter returns the process-wide limiter (50ms interval unless replaced).
func DefaultLimiter() *Limiter {
	return ratelimit.Default()
}

// SetDefaultLimiter replaces the process-wide limiter and returns the
// previous one.
func SetDefaultLimiter(l *Limiter) *Limiter {
	return ratelimit.SetDefault(l)
}

// Metrics collects Prometheus metrics about calls.
type Metrics = metrics.Collector

// NewMetrics registers call metrics on registry (nil means the default registerer).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	return metrics.New(registry)
}

// Config holds the credentials and transport options of a client tree.
// It is copied when a tree is built; later changes have no effect on it.
type Config struct {
	// BaseURL replaces the declared path of the root endpoint.
	BaseURL string
	// Token is sent as "Authorization: <AuthScheme> <Token>" when non-empty.
	Token string
	// AuthScheme defaults to "Bearer".
	AuthScheme string
	// Encoding defaults to EncodingJSON.
	Encoding Encoding
	// SkipTLSVerify disables certificate verification.
	SkipTLSVerify bool

	// Limiter overrides the process-wide limiter.
	Limiter *Limiter
	// Metrics is optional.
	Metrics *Metrics
	// Logger is optional; nil discards log output.
	Logger Logger
	// Debug logs every request and response at debug level.
	Debug bool

	// Timeout is the per-request HTTP timeout (default 30s).
	Timeout time.Duration
	// RetryMax retries transport failures only; HTTP statuses are final.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between transport retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// HTTPClient replaces the underlying HTTP client; Timeout and
	// SkipTLSVerify are then ignored.
	HTTPClient *http.Client
}

// session is the immutable per-tree state passed down to every node.
type session struct {
	token      string
	authScheme string
	encoding   Encoding
	transport  *apihttp.Client
	limiter    *Limiter
	metrics    *Metrics
	logger     Logger
}

func newSession(config *Config) *session {
	cfg := Config{}
	if config != nil {
		cfg = *config
	}

	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	authScheme := cfg.AuthScheme
	if authScheme == "" {
		authScheme = constants.AuthSchemeBearer
	}

	return &session{
		token:      cfg.Token,
		authScheme: authScheme,
		encoding:   cfg.Encoding,
		transport:  apihttp.NewClient(transportOptions(&cfg, logger)...),
		limiter:    cfg.Limiter,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

func transportOptions(cfg *Config, logger Logger) []apihttp.Option {
	opts := []apihttp.Option{
		apihttp.WithLogger(logger),
		apihttp.WithDebug(cfg.Debug),
		apihttp.WithInsecureSkipVerify(cfg.SkipTLSVerify),
	}

	if cfg.UserAgent != "" {
		opts = append(opts, apihttp.WithUserAgent(cfg.UserAgent))
	}

	if cfg.Timeout > 0 {
		opts = append(opts, apihttp.WithTimeout(cfg.Timeout))
	}

	if cfg.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if cfg.RetryWaitMin > 0 {
			retryWaitMin = cfg.RetryWaitMin
		}

		if cfg.RetryWaitMax > 0 {
			retryWaitMax = cfg.RetryWaitMax
		}

		opts = append(opts, apihttp.WithRetryConfig(cfg.RetryMax, retryWaitMin, retryWaitMax))
	}

	if cfg.HTTPClient != nil {
		opts = append(opts, apihttp.WithHTTPClient(cfg.HTTPClient))
	}

	return opts
}

// limiterFor resolves the limiter at call time so SetDefaultLimiter applies
// to existing trees that were built without an explicit limiter.
func (s *session) limiterFor() *Limiter {
	if s.limiter != nil {
		return s.limiter
	}

	return ratelimit.Default()
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
