package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/vaintrub/docebo-go/internal/platformtest"
)

func newTestCache(t *testing.T, serverURL string, opts ...Option) *CredentialCache {
	t.Helper()
	cache, err := NewCredentialCache(serverURL, testCredentials(), opts...)
	require.NoError(t, err)
	return cache
}

func TestCredentialCache_ReusesTokenWithinTTL(t *testing.T) {
	srv := platformtest.New(t)
	cache := newTestCache(t, srv.URL)
	ctx := context.Background()

	first, err := cache.Token(ctx)
	require.NoError(t, err)
	second, err := cache.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, srv.TokenExchanges())
	assert.EqualValues(t, 1, cache.Exchanges())
}

func TestCredentialCache_RenewsAfterExpiry(t *testing.T) {
	srv := platformtest.New(t)
	srv.SetTokenTTL(60)
	cache := newTestCache(t, srv.URL)
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	first, err := cache.Token(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(60*time.Second), cache.ExpiresAt(), time.Second)

	now = now.Add(61 * time.Second)
	second, err := cache.Token(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "expired token must not be reused")
	assert.Equal(t, 2, srv.TokenExchanges())
}

func TestCredentialCache_ExpiryBuffer(t *testing.T) {
	srv := platformtest.New(t)
	srv.SetTokenTTL(120)
	cache := newTestCache(t, srv.URL, WithTokenExpiryBuffer(time.Minute))
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Token(ctx)
	require.NoError(t, err)

	now = now.Add(61 * time.Second)
	_, err = cache.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.TokenExchanges())
}

func TestCredentialCache_ExpiryBufferLongerThanTTL(t *testing.T) {
	srv := platformtest.New(t)
	srv.SetTokenTTL(30)
	cache := newTestCache(t, srv.URL, WithTokenExpiryBuffer(time.Minute))
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	for range 3 {
		_, err := cache.Token(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, srv.TokenExchanges(), "token must be reused within half its lifetime")

	now = now.Add(16 * time.Second)
	_, err := cache.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.TokenExchanges())
}

func TestCredentialCache_FallbackTTL(t *testing.T) {
	srv := platformtest.New(t)
	srv.SetTokenTTL(0)
	cache := newTestCache(t, srv.URL)

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(3600*time.Second), cache.ExpiresAt(), time.Second)
}

func TestCredentialCache_FailureLeavesCacheEmpty(t *testing.T) {
	srv := platformtest.New(t)
	cache := newTestCache(t, srv.URL)
	ctx := context.Background()

	now := time.Now()
	cache.now = func() time.Time { return now }

	_, err := cache.Token(ctx)
	require.NoError(t, err)

	srv.FailTokens(http.StatusUnauthorized)
	now = now.Add(2 * time.Hour)

	_, err = cache.Token(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "client rejected", authErr.Message)
	assert.True(t, cache.ExpiresAt().IsZero(), "stale token must be dropped")
}

func TestCredentialCache_WrongPasswordIsAuthenticationFailure(t *testing.T) {
	srv := platformtest.New(t)
	creds := testCredentials()
	creds.Password = "wrong"
	cache, err := NewCredentialCache(srv.URL, creds)
	require.NoError(t, err)

	_, err = cache.Token(context.Background())
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestCredentialCache_SingleFlight(t *testing.T) {
	srv := platformtest.New(t)
	srv.SetTokenDelay(100 * time.Millisecond)
	cache := newTestCache(t, srv.URL)

	const callers = 10
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.Token(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, tokens[0], tokens[i])
	}
	assert.Equal(t, 1, srv.TokenExchanges())
}

func TestCredentialCache_InvalidateOnlyMatchingToken(t *testing.T) {
	srv := platformtest.New(t)
	cache := newTestCache(t, srv.URL)
	ctx := context.Background()

	tok, err := cache.Token(ctx)
	require.NoError(t, err)

	cache.Invalidate("some-older-token")
	again, err := cache.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, again)
	assert.Equal(t, 1, srv.TokenExchanges())

	cache.Invalidate(tok)
	renewed, err := cache.Token(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, tok, renewed)
	assert.Equal(t, 2, srv.TokenExchanges())
}

func TestNewCredentialCache_Validation(t *testing.T) {
	_, err := NewCredentialCache("", testCredentials())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewCredentialCache("http://localhost", Credentials{ClientID: "c"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTokenTTL(t *testing.T) {
	now := time.Now()

	t.Run("expires_in wins", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "x"}).WithExtra(map[string]interface{}{"expires_in": float64(120)})
		assert.Equal(t, 120*time.Second, tokenTTL(tok, now))
	})

	t.Run("string expires_in", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "x"}).WithExtra(map[string]interface{}{"expires_in": "90"})
		assert.Equal(t, 90*time.Second, tokenTTL(tok, now))
	})

	t.Run("jwt exp claim", func(t *testing.T) {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": now.Add(10 * time.Minute).Unix(),
		}).SignedString([]byte("k"))
		require.NoError(t, err)

		tok := (&oauth2.Token{AccessToken: signed}).WithExtra(map[string]interface{}{})
		assert.InDelta(t, (10 * time.Minute).Seconds(), tokenTTL(tok, now).Seconds(), 1)
	})

	t.Run("opaque token falls back to an hour", func(t *testing.T) {
		tok := (&oauth2.Token{AccessToken: "opaque"}).WithExtra(map[string]interface{}{})
		assert.Equal(t, time.Hour, tokenTTL(tok, now))
	})
}

func TestNewAuthenticationError_PlainError(t *testing.T) {
	err := newAuthenticationError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, 0, err.StatusCode)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Contains(t, err.Error(), "connection refused")
}
