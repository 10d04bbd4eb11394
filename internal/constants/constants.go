package constants

import (
	"net/http"
	"time"
)

// Input file defaults, resolved relative to the working directory
const (
	DefaultCredentialsFile = "config.yaml"
	DefaultEndpointsFile   = "urls.json"
)

// Backend names as they appear on the command line and in saved results
const (
	BackendAName = "aiohttp"
	BackendBName = "tls"
)

// Synthetic status codes used when no real response exists
const (
	StatusUnsupportedMethod = http.StatusMethodNotAllowed
	StatusTransportFailure  = http.StatusInternalServerError
	StatusRateLimited       = http.StatusTooManyRequests
)

// RetryAfterField is the JSON field read from a 429 body.
const RetryAfterField = "retry_after"

// MaxRetryAfter caps the pause advertised by a rate-limited response.
const MaxRetryAfter = 24 * time.Hour

// MaxRedirects matches the net/http client default so both backends stop at the same hop.
const MaxRedirects = 10

// Display Constants
const (
	DisplayTruncateLimit = 100
	TruncateSuffix       = "..."
	NoContentMessage     = "No content"
	TxtSeparatorWidth    = 50
)

// Anonymizer replacement values
const (
	AnonymizedEmailDomain = "@harmless.com"
	AnonymizedName        = "Harmless Guild"
	AnonymizedLocale      = "en-US"
	AnonymizedHandleLen   = 10
	AnonymizedEmailLen    = 8
	AnonymizedHashLen     = 32
)
