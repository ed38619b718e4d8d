package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/vaintrub/docebo-go/internal/metrics"
)

// Adapter implements the Client interface for the Docebo platform API.
type Adapter struct {
	endpoint   string
	httpClient *http.Client
	opts       *options
	tokens     TokenProvider
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// New creates a new platform client with the provided options.
// endpoint may be a bare domain ("acme.docebosaas.com"), in which case https is assumed.
// Returns an error if required parameters are missing.
func New(endpoint string, creds Credentials, opts ...Option) (*Adapter, error) {
	endpoint = normalizeEndpoint(endpoint)
	if endpoint == "" {
		return nil, &ValidationError{Field: "endpoint", Message: "cannot be empty"}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, &ValidationError{Field: "endpoint", Message: err.Error()}
	}

	// Apply options
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.tokenProvider == nil {
		if err := creds.validate(); err != nil {
			return nil, err
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	var m *metrics.Collector
	if o.registerer != nil {
		var err error
		if m, err = metrics.New(o.registerer); err != nil {
			return nil, err
		}
	}

	httpClient := buildHTTPClient(o)

	tokens := o.tokenProvider
	if tokens == nil {
		tokens = newCredentialCache(endpoint, creds, o, httpClient, m)
	}

	var limiter *rate.Limiter
	if o.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.rateLimit), o.rateBurst)
	}

	return &Adapter{
		endpoint:   endpoint,
		httpClient: httpClient,
		opts:       o,
		tokens:     tokens,
		limiter:    limiter,
		logger:     logger,
		metrics:    m,
	}, nil
}

// buildHTTPClient returns the custom client from options, or a pooled client
// with transport-level timeouts.
func buildHTTPClient(o *options) *http.Client {
	if o.httpClient != nil {
		return o.httpClient
	}
	// Default MaxIdleConnsPerHost is 2, which causes excessive TIME_WAIT connections
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = 100
	transport.MaxConnsPerHost = 100
	transport.ResponseHeaderTimeout = o.responseHeaderTimeout
	transport.IdleConnTimeout = o.idleConnTimeout
	return &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	// Remove trailing slash to prevent double slashes in URL concatenation
	return strings.TrimSuffix(endpoint, "/")
}

// Endpoint returns the normalized base URL.
func (a *Adapter) Endpoint() string {
	return a.endpoint
}

// Tokens returns the token provider used by the gateway.
func (a *Adapter) Tokens() TokenProvider {
	return a.tokens
}

// Ping checks that credentials are accepted and the API answers.
func (a *Adapter) Ping(ctx context.Context) error {
	_, _, err := a.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   pathUsers,
		query:  url.Values{"page_size": {"1"}},
	})
	return err
}
