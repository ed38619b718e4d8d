package client

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// doWithRetry executes an HTTP request with exponential backoff retry.
// It will retry on transport errors, per-call timeouts and retryable status
// codes (408, 429, 500, 502, 503, 504). When attempts run out on a retryable
// status the last response is returned so the caller can build an APIError.
// Backoff: initialBackoff -> initialBackoff*2 -> initialBackoff*4 (with jitter)
func (a *Adapter) doWithRetry(ctx context.Context, method, apiURL string, body []byte, token string) (*rawResponse, error) {
	var lastErr error
	backoff := a.opts.retryBackoff

	for attempt := 0; attempt < a.opts.retryMax; attempt++ {
		if attempt > 0 {
			a.metrics.Retry()
		}

		resp, err := a.attempt(ctx, method, apiURL, body, token)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			a.logger.DebugContext(ctx, "request attempt failed",
				slog.String("method", method),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err))
			if !a.shouldRetry(ctx, attempt, backoff) {
				return nil, lastErr
			}
			backoff = a.nextBackoff(backoff)
			continue
		}

		if isRetryableStatus(resp.statusCode) {
			wait := backoff
			if resp.statusCode == http.StatusTooManyRequests {
				if after := retryAfter(resp.headers); after > wait {
					wait = after
				}
			}
			if !a.shouldRetry(ctx, attempt, wait) {
				return resp, nil
			}
			a.logger.DebugContext(ctx, "retrying after transient status",
				slog.String("method", method),
				slog.Int("status", resp.statusCode),
				slog.Int("attempt", attempt+1))
			backoff = a.nextBackoff(backoff)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// shouldRetry returns true if we should attempt another retry.
// It waits for the backoff duration respecting context cancellation.
func (a *Adapter) shouldRetry(ctx context.Context, attempt int, backoff time.Duration) bool {
	// Don't retry if this is the last attempt
	if attempt >= a.opts.retryMax-1 {
		return false
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextBackoff calculates the next backoff duration with jitter.
// Formula: currentBackoff * 2 + random(0, currentBackoff/2)
func (a *Adapter) nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if half := int64(current / 2); half > 0 {
		next += time.Duration(rand.Int64N(half))
	}
	return next
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
