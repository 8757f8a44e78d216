package constants

import "errors"

// Configuration errors.
var (
	ErrDeclarationRequired    = errors.New("api.declaration is required (use --declaration or set it in the config file)")
	ErrInvalidLogLevel        = errors.New("invalid logging level")
	ErrInvalidLogFormat       = errors.New("invalid logging format")
	ErrInvalidOutputFormat    = errors.New("invalid output format")
	ErrNegativeInterval       = errors.New("rate_limit.interval must not be negative")
	ErrNegativeRetryMax       = errors.New("http.retry_max must not be negative")
	ErrTokenPromptNotTerminal = errors.New("cannot prompt for token: stdin is not a terminal")
)

// Navigation errors.
var (
	ErrPathRequired     = errors.New("node path is required")
	ErrNotACollection   = errors.New("node is not a collection")
	ErrNoItemEndpoint   = errors.New("collection has no item endpoint declared")
	ErrLookupRequired   = errors.New("lookup value is required")
	ErrInvalidLimitFlag = errors.New("--limit must not be negative")
)
