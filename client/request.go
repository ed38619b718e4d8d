package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

// requestConfig contains parameters for an HTTP request.
type requestConfig struct {
	method      string      // HTTP method (GET, POST, PUT, PATCH, DELETE)
	path        string      // URL path template, e.g. "/learn/v1/courses/%s"
	pathParams  []string    // Parameters to substitute in path (will be URL-escaped)
	query       url.Values  // Query parameters
	body        interface{} // Request body (will be JSON-encoded)
	expectCodes []int       // Expected HTTP status codes (default: any 2xx)
}

// rawResponse is one completed HTTP exchange.
type rawResponse struct {
	statusCode int
	body       []byte
	headers    http.Header
	requestID  string
}

// Call issues one authenticated call against the platform API and returns
// the raw JSON body. Non-2xx statuses come back as *APIError; a 2xx body that
// is not JSON comes back as *ProtocolError. Empty bodies yield nil.
func (a *Adapter) Call(ctx context.Context, method, path string, query url.Values, body interface{}) (json.RawMessage, error) {
	if method == "" {
		return nil, &ValidationError{Field: "method", Message: "cannot be empty"}
	}
	if path == "" {
		return nil, &ValidationError{Field: "path", Message: "cannot be empty"}
	}

	respBody, status, err := a.doRequest(ctx, requestConfig{
		method: method,
		path:   path,
		query:  query,
		body:   body,
	})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	if !json.Valid(respBody) {
		return nil, newProtocolError(status, respBody, nil)
	}
	return json.RawMessage(respBody), nil
}

// doRequest executes an API request with authentication, URL building, and error handling.
// A 401 invalidates the token and the call is repeated once with a fresh one.
// Returns response body, status code, and error.
func (a *Adapter) doRequest(ctx context.Context, cfg requestConfig) ([]byte, int, error) {
	// 1. Build URL with escaped path parameters
	apiURL := a.buildURL(cfg.path, cfg.pathParams, cfg.query)

	// 2. Serialize body if present
	var bodyBytes []byte
	if cfg.body != nil {
		var err error
		bodyBytes, err = json.Marshal(cfg.body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	// 3. Authenticate
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return nil, 0, err
	}

	// 4. Execute with retry
	resp, err := a.doWithRetry(ctx, cfg.method, apiURL, bodyBytes, token)
	if err != nil {
		return nil, 0, err
	}

	// 5. One renewal on a rejected token
	if resp.statusCode == http.StatusUnauthorized {
		a.logger.DebugContext(ctx, "token rejected, renewing",
			slog.String("method", cfg.method),
			slog.String("path", cfg.path),
			slog.String("request_id", resp.requestID))
		a.tokens.Invalidate(token)
		token, err = a.tokens.Token(ctx)
		if err != nil {
			return nil, 0, err
		}
		resp, err = a.doWithRetry(ctx, cfg.method, apiURL, bodyBytes, token)
		if err != nil {
			return nil, 0, err
		}
	}

	// 6. Check status code
	if !isExpectedStatus(resp.statusCode, cfg.expectCodes) {
		return resp.body, resp.statusCode, newAPIErrorFromResponse(resp.statusCode, resp.body, resp.requestID)
	}

	return resp.body, resp.statusCode, nil
}

// doJSON executes an API request and unmarshals the JSON response into result.
func (a *Adapter) doJSON(ctx context.Context, cfg requestConfig, result interface{}) error {
	body, status, err := a.doRequest(ctx, cfg)
	if err != nil {
		return err
	}

	if result != nil && len(body) > 0 {
		trimmed := bytes.TrimSpace(body)
		if len(trimmed) > 0 && trimmed[0] != '{' && trimmed[0] != '[' {
			return newProtocolError(status, body, nil)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return newProtocolError(status, body, err)
		}
	}

	return nil
}

// doNoContent executes an API request whose response body is ignored.
func (a *Adapter) doNoContent(ctx context.Context, cfg requestConfig) error {
	_, _, err := a.doRequest(ctx, cfg)
	return err
}

// attempt performs a single HTTP round trip bounded by the per-call timeout.
func (a *Adapter) attempt(ctx context.Context, method, apiURL string, body []byte, token string) (*rawResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.opts.callTimeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(callCtx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.metrics.ObserveRequest(method, 0, time.Since(start))
		if ctx.Err() == nil && isTimeout(err) {
			return nil, &APIError{
				Timeout:   true,
				Message:   fmt.Sprintf("no response within %s", a.opts.callTimeout),
				RequestID: requestID,
			}
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	a.metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		if ctx.Err() == nil && isTimeout(err) {
			return nil, &APIError{Timeout: true, Message: "response body read timed out", RequestID: requestID}
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if id := resp.Header.Get("X-Request-Id"); id != "" {
		requestID = id
	}
	return &rawResponse{
		statusCode: resp.StatusCode,
		body:       respBody,
		headers:    resp.Header,
		requestID:  requestID,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func newProtocolError(status int, body []byte, err error) *ProtocolError {
	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return &ProtocolError{StatusCode: status, Preview: preview, Err: err}
}

// buildURL constructs a full URL with escaped path parameters and query string.
func (a *Adapter) buildURL(pathTemplate string, pathParams []string, query url.Values) string {
	var path string
	if len(pathParams) > 0 {
		escapedParams := make([]interface{}, len(pathParams))
		for i, p := range pathParams {
			escapedParams[i] = url.PathEscape(p)
		}
		path = fmt.Sprintf(pathTemplate, escapedParams...)
	} else {
		path = pathTemplate
	}

	result := a.endpoint + path

	if len(query) > 0 {
		result += "?" + query.Encode()
	}

	return result
}

// isExpectedStatus checks if the status code is in the expected list.
// If expected is empty, any 2xx status is accepted.
func isExpectedStatus(code int, expected []int) bool {
	if len(expected) == 0 {
		return code >= 200 && code < 300
	}
	for _, e := range expected {
		if code == e {
			return true
		}
	}
	return false
}
