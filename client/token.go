package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/vaintrub/docebo-go/internal/metrics"
)

// Credentials are the long-lived secrets exchanged for bearer tokens.
// They are supplied once and never change for the life of the process.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

func (c Credentials) validate() error {
	switch {
	case c.ClientID == "":
		return &ValidationError{Field: "clientID", Message: "cannot be empty"}
	case c.ClientSecret == "":
		return &ValidationError{Field: "clientSecret", Message: "cannot be empty"}
	case c.Username == "":
		return &ValidationError{Field: "username", Message: "cannot be empty"}
	case c.Password == "":
		return &ValidationError{Field: "password", Message: "cannot be empty"}
	}
	return nil
}

// TokenProvider supplies bearer tokens to the gateway.
type TokenProvider interface {
	// Token returns a token that has not expired.
	Token(ctx context.Context) (string, error)
	// Invalidate drops token if it is still the cached one.
	Invalidate(token string)
}

// cachedToken holds the cached bearer token (internal use only)
type cachedToken struct {
	accessToken string
	expiresAt   time.Time
	renewAt     time.Time // expiresAt minus the expiry buffer
}

// CredentialCache exchanges Credentials for a bearer token with the OAuth2
// password grant and caches it in memory until it expires.
type CredentialCache struct {
	config     *oauth2.Config
	creds      Credentials
	httpClient *http.Client
	buffer     time.Duration
	logger     *slog.Logger
	metrics    *metrics.Collector
	now        func() time.Time

	mu        sync.RWMutex
	cached    *cachedToken
	group     singleflight.Group
	exchanges atomic.Int64
}

// NewCredentialCache creates a cache that exchanges creds at endpoint's token path.
// It honors WithHTTPClient, WithTimeout, WithLogger, WithMetrics, WithScope,
// WithTokenPath and WithTokenExpiryBuffer.
func NewCredentialCache(endpoint string, creds Credentials, opts ...Option) (*CredentialCache, error) {
	if endpoint == "" {
		return nil, &ValidationError{Field: "endpoint", Message: "cannot be empty"}
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	var m *metrics.Collector
	if o.registerer != nil {
		var err error
		if m, err = metrics.New(o.registerer); err != nil {
			return nil, err
		}
	}

	return newCredentialCache(strings.TrimSuffix(endpoint, "/"), creds, o, buildHTTPClient(o), m), nil
}

func newCredentialCache(endpoint string, creds Credentials, o *options, httpClient *http.Client, m *metrics.Collector) *CredentialCache {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialCache{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  endpoint + o.tokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{o.scope},
		},
		creds:      creds,
		httpClient: httpClient,
		buffer:     o.tokenExpiryBuffer,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Token returns the cached token, exchanging credentials first if there is
// no token or it has expired. Concurrent callers share one exchange.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	if tok, ok := c.current(); ok {
		return tok, nil
	}

	v, err, shared := c.group.Do("token", func() (interface{}, error) {
		// Another caller may have finished an exchange while we waited.
		if tok, ok := c.current(); ok {
			return tok, nil
		}
		return c.exchange(context.WithoutCancel(ctx))
	})
	if shared {
		c.logger.DebugContext(ctx, "joined in-flight token exchange")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops token from the cache if it is still the cached one.
// A token that was already replaced by a newer exchange is left alone.
func (c *CredentialCache) Invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && c.cached.accessToken == token {
		c.cached = nil
	}
}

// Exchanges returns the number of credential exchanges performed.
func (c *CredentialCache) Exchanges() int64 {
	return c.exchanges.Load()
}

// ExpiresAt returns the expiry of the cached token, or the zero time.
func (c *CredentialCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return time.Time{}
	}
	return c.cached.expiresAt
}

func (c *CredentialCache) current() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached != nil && c.now().Before(c.cached.renewAt) {
		return c.cached.accessToken, true
	}
	return "", false
}

func (c *CredentialCache) exchange(ctx context.Context) (string, error) {
	c.exchanges.Add(1)

	// Expired tokens are never reused, even if the exchange below fails.
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.config.PasswordCredentialsToken(ctx, c.creds.Username, c.creds.Password)
	if err != nil {
		c.metrics.TokenExchange(false)
		authErr := newAuthenticationError(err)
		c.logger.WarnContext(ctx, "credential exchange failed", slog.Any("error", authErr))
		return "", authErr
	}

	now := c.now()
	ttl := tokenTTL(tok, now)
	expiresAt := now.Add(ttl)

	// A buffer longer than the lifetime would force an exchange on every call.
	buffer := min(c.buffer, ttl/2)

	c.mu.Lock()
	c.cached = &cachedToken{accessToken: tok.AccessToken, expiresAt: expiresAt, renewAt: expiresAt.Add(-buffer)}
	c.mu.Unlock()

	c.metrics.TokenExchange(true)
	c.logger.DebugContext(ctx, "credential exchange succeeded", slog.Time("expires_at", expiresAt))
	return tok.AccessToken, nil
}

// tokenTTL picks the token lifetime: expires_in from the response, then the
// JWT exp claim of the access token, then defaultTokenTTL.
func tokenTTL(tok *oauth2.Token, now time.Time) time.Duration {
	if secs, ok := numericExtra(tok.Extra("expires_in")); ok && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.After(now) {
			return exp.Sub(now)
		}
	}

	return defaultTokenTTL
}

func numericExtra(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func newAuthenticationError(err error) *AuthenticationError {
	authErr := &AuthenticationError{Message: err.Error(), Err: err}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil {
			authErr.StatusCode = re.Response.StatusCode
		}
		switch {
		case re.ErrorDescription != "":
			authErr.Message = re.ErrorDescription
		case re.ErrorCode != "":
			authErr.Message = re.ErrorCode
		case len(re.Body) > 0:
			authErr.Message = string(re.Body)
		}
	}
	return authErr
}
