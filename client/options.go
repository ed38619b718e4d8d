package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Configuration constants
const (
	// defaultTokenTTL is used when the token response carries no expiry.
	defaultTokenTTL = 3600 * time.Second

	// Default configuration values
	defaultTimeout               = 60 * time.Second
	defaultCallTimeout           = 30 * time.Second
	defaultResponseHeaderTimeout = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultRetryMax              = 3
	defaultRetryBackoff          = 500 * time.Millisecond
	defaultScope                 = "api"
	defaultTokenPath             = "/oauth2/token"
)

// Option configures the Adapter.
type Option func(*options)

// options holds the configuration for the Adapter.
type options struct {
	timeout               time.Duration         // HTTP client timeout (default: 60s)
	callTimeout           time.Duration         // Per-attempt timeout (default: 30s)
	responseHeaderTimeout time.Duration         // Timeout for waiting for response headers (default: 30s)
	idleConnTimeout       time.Duration         // How long idle connections stay in pool (default: 90s)
	retryMax              int                   // Total attempts per call (default: 3)
	retryBackoff          time.Duration         // Initial backoff duration (default: 500ms)
	tokenExpiryBuffer     time.Duration         // Renew this long before expiry (default: 0)
	rateLimit             float64               // Requests per second, 0 disables (default: 0)
	rateBurst             int                   // Limiter burst (default: 1)
	httpClient            *http.Client          // Custom HTTP client (overrides all timeout options if set)
	logger                *slog.Logger          // Structured logger (default: slog.Default())
	registerer            prometheus.Registerer // Metrics registry, nil disables metrics
	scope                 string                // OAuth2 scope (default: api)
	tokenPath             string                // Token endpoint path (default: /oauth2/token)
	tokenProvider         TokenProvider         // Replaces the built-in CredentialCache (default: nil)
}

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		timeout:               defaultTimeout,
		callTimeout:           defaultCallTimeout,
		responseHeaderTimeout: defaultResponseHeaderTimeout,
		idleConnTimeout:       defaultIdleConnTimeout,
		retryMax:              defaultRetryMax,
		retryBackoff:          defaultRetryBackoff,
		rateBurst:             1,
		scope:                 defaultScope,
		tokenPath:             defaultTokenPath,
	}
}

// WithTimeout sets the overall HTTP client timeout.
// Values <= 0 are ignored (default is used).
// Default: 60s
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithCallTimeout bounds each attempt of a gateway call. An attempt that runs
// over fails with an APIError matching ErrTimeout.
// Default: 30s. Values <= 0 are ignored.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithResponseHeaderTimeout sets the timeout for waiting for response headers.
// Default: 30s. Values <= 0 are ignored.
// Note: This option is ignored when WithHTTPClient is used.
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.responseHeaderTimeout = d
		}
	}
}

// WithIdleConnTimeout sets how long idle connections stay in the connection pool.
// Default: 90s. Values <= 0 are ignored.
// Note: This option is ignored when WithHTTPClient is used.
func WithIdleConnTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleConnTimeout = d
		}
	}
}

// WithRetry configures retry behavior with exponential backoff.
// maxAttempts is the total number of attempts (including the first one).
// backoff is the initial backoff duration, which doubles after each failed attempt.
// Default: 3 attempts, 500ms initial backoff
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(o *options) {
		if maxAttempts > 0 {
			o.retryMax = maxAttempts
		}
		if backoff > 0 {
			o.retryBackoff = backoff
		}
	}
}

// WithRateLimit throttles outgoing calls to rps requests per second.
// Default: unlimited. Values <= 0 are ignored.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps > 0 {
			o.rateLimit = rps
			if burst > 0 {
				o.rateBurst = burst
			}
		}
	}
}

// WithTokenExpiryBuffer renews the cached token d before it expires.
// The buffer is capped at half the token lifetime.
// Default: 0. Values < 0 are ignored.
func WithTokenExpiryBuffer(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.tokenExpiryBuffer = d
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
// When set, this overrides timeout, responseHeaderTimeout, and idleConnTimeout options.
// Nil values are ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithLogger sets a structured logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers the client's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithScope sets the OAuth2 scope for token requests.
// Default: api
func WithScope(scope string) Option {
	return func(o *options) {
		if scope != "" {
			o.scope = scope
		}
	}
}

// WithTokenPath sets the token endpoint path.
// Default: /oauth2/token
func WithTokenPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.tokenPath = path
		}
	}
}

// WithTokenProvider replaces the built-in CredentialCache, e.g. with a test
// double or a cache shared between several adapters. Credentials passed to New
// are not validated when a provider is set.
func WithTokenProvider(p TokenProvider) Option {
	return func(o *options) {
		if p != nil {
			o.tokenProvider = p
		}
	}
}
