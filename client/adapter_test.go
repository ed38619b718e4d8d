package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/vaintrub/docebo-go/internal/platformtest"
)

// === Helper functions ===

// testCredentials returns the credentials accepted by platformtest.
func testCredentials() Credentials {
	return Credentials{
		ClientID:     platformtest.ClientID,
		ClientSecret: platformtest.ClientSecret,
		Username:     platformtest.Username,
		Password:     platformtest.Password,
	}
}

// newTestAdapter creates an Adapter pointing to the given test server.
func newTestAdapter(t *testing.T, serverURL string, opts ...Option) *Adapter {
	t.Helper()
	opts = append([]Option{WithRetry(1, time.Millisecond)}, opts...)
	adapter, err := New(serverURL, testCredentials(), opts...)
	if err != nil {
		t.Fatalf("failed to create adapter: %v", err)
	}
	return adapter
}

// === Constructor and validation tests ===

func TestNew_Validation(t *testing.T) {
	valid := testCredentials()
	tests := []struct {
		name        string
		endpoint    string
		creds       Credentials
		wantErr     bool
		wantErrType error
	}{
		{
			name:        "empty endpoint returns ValidationError",
			endpoint:    "",
			creds:       valid,
			wantErr:     true,
			wantErrType: ErrInvalidInput,
		},
		{
			name:        "empty client id returns ValidationError",
			endpoint:    "http://localhost",
			creds:       Credentials{ClientSecret: "s", Username: "u", Password: "p"},
			wantErr:     true,
			wantErrType: ErrInvalidInput,
		},
		{
			name:        "empty client secret returns ValidationError",
			endpoint:    "http://localhost",
			creds:       Credentials{ClientID: "c", Username: "u", Password: "p"},
			wantErr:     true,
			wantErrType: ErrInvalidInput,
		},
		{
			name:        "empty username returns ValidationError",
			endpoint:    "http://localhost",
			creds:       Credentials{ClientID: "c", ClientSecret: "s", Password: "p"},
			wantErr:     true,
			wantErrType: ErrInvalidInput,
		},
		{
			name:        "empty password returns ValidationError",
			endpoint:    "http://localhost",
			creds:       Credentials{ClientID: "c", ClientSecret: "s", Username: "u"},
			wantErr:     true,
			wantErrType: ErrInvalidInput,
		},
		{
			name:     "valid params succeeds",
			endpoint: "http://localhost",
			creds:    valid,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.endpoint, tt.creds)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
					return
				}
				if tt.wantErrType != nil && !errors.Is(err, tt.wantErrType) {
					t.Errorf("expected error to be %v, got %v", tt.wantErrType, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNew_Options(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		adapter, err := New("http://localhost", testCredentials())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if adapter.opts.timeout != 60*time.Second {
			t.Errorf("expected default timeout 60s, got %v", adapter.opts.timeout)
		}
		if adapter.opts.callTimeout != 30*time.Second {
			t.Errorf("expected default call timeout 30s, got %v", adapter.opts.callTimeout)
		}
		if adapter.opts.retryMax != 3 {
			t.Errorf("expected 3 attempts, got %d", adapter.opts.retryMax)
		}
		if adapter.opts.scope != "api" {
			t.Errorf("expected default scope 'api', got %s", adapter.opts.scope)
		}
		if adapter.limiter != nil {
			t.Error("expected no rate limiter by default")
		}
		if _, ok := adapter.tokens.(*CredentialCache); !ok {
			t.Errorf("expected built-in credential cache, got %T", adapter.tokens)
		}
	})

	t.Run("WithRetry sets attempts and backoff", func(t *testing.T) {
		adapter, _ := New("http://localhost", testCredentials(), WithRetry(5, time.Second))
		if adapter.opts.retryMax != 5 || adapter.opts.retryBackoff != time.Second {
			t.Errorf("unexpected retry config: %d %v", adapter.opts.retryMax, adapter.opts.retryBackoff)
		}
	})

	t.Run("WithRateLimit creates limiter", func(t *testing.T) {
		adapter, _ := New("http://localhost", testCredentials(), WithRateLimit(5, 2))
		if adapter.limiter == nil {
			t.Fatal("expected rate limiter")
		}
		if adapter.limiter.Burst() != 2 {
			t.Errorf("expected burst 2, got %d", adapter.limiter.Burst())
		}
	})

	t.Run("WithHTTPClient overrides default client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 120 * time.Second}
		adapter, _ := New("http://localhost", testCredentials(), WithHTTPClient(customClient))
		if adapter.httpClient != customClient {
			t.Error("expected custom HTTP client to be used")
		}
	})

	t.Run("WithTokenProvider skips credential validation", func(t *testing.T) {
		adapter, err := New("http://localhost", Credentials{}, WithTokenProvider(&staticTokens{token: "x"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := adapter.tokens.(*staticTokens); !ok {
			t.Errorf("expected injected provider, got %T", adapter.tokens)
		}
	})
}

func TestNew_EndpointNormalization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme.docebosaas.com", "https://acme.docebosaas.com"},
		{"https://acme.docebosaas.com/", "https://acme.docebosaas.com"},
		{"http://127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"  acme.docebosaas.com  ", "https://acme.docebosaas.com"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			adapter, err := New(tt.in, testCredentials())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if adapter.Endpoint() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, adapter.Endpoint())
			}
		})
	}
}

func TestPing(t *testing.T) {
	srv := platformtest.New(t)
	adapter := newTestAdapter(t, srv.URL)

	if err := adapter.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	srv.FailTokens(http.StatusUnauthorized)
	bad := newTestAdapter(t, srv.URL)
	err := bad.Ping(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

// staticTokens is a TokenProvider test double.
type staticTokens struct {
	token       string
	invalidated []string
}

func (s *staticTokens) Token(context.Context) (string, error) { return s.token, nil }

func (s *staticTokens) Invalidate(token string) { s.invalidated = append(s.invalidated, token) }
