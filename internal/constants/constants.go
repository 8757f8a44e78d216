package constants

import "time"

// Rate limiting.
const (
	// DefaultCallInterval is the minimum delay between two outbound calls
	// issued through the same limiter.
	DefaultCallInterval = 50 * time.Millisecond
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second
)

// Retry limits. Retries only cover transport failures, never HTTP statuses.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination response keys.
const (
	// DefaultResultsKey holds the items of one page.
	DefaultResultsKey = "results"

	// DefaultCountKey holds the total number of items.
	DefaultCountKey = "count"

	// DefaultNextKey holds the absolute URL of the following page.
	DefaultNextKey = "next"
)

// Records.
const (
	// DefaultLookupKey is the attribute used to address a record.
	DefaultLookupKey = "id"
)

// Authentication.
const (
	// AuthSchemeBearer is the default Authorization scheme.
	AuthSchemeBearer = "Bearer"
)

// HTTP headers and content types.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "apicaller-go"
)

// HTTP status range treated as success.
const (
	// HTTPStatusOK is the first success status.
	HTTPStatusOK = 200

	// HTTPStatusMultipleChoices is the first status past the success range.
	HTTPStatusMultipleChoices = 300
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// None is used when no value is present.
	None = "none"
)

// Format constants.
const (
	// FormatTable for tabular output.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Logging constants.
const (
	// LogFormatConsole writes human readable log lines.
	LogFormatConsole = "console"

	// LogFormatJSON writes one JSON object per log line.
	LogFormatJSON = "json"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"
)
