package bulk

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultBatchSize  = 3
	defaultBatchPause = 500 * time.Millisecond
)

// Option configures the Orchestrator.
type Option func(*options)

type options struct {
	batchSize        int
	batchPause       time.Duration
	allowUnconfirmed bool
	logger           *slog.Logger
	registerer       prometheus.Registerer
}

func defaultOptions() *options {
	return &options{
		batchSize:  defaultBatchSize,
		batchPause: defaultBatchPause,
	}
}

// WithBatchSize sets how many users are processed concurrently.
// Default: 3. Values <= 0 are ignored.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchPause sets the pause between batches.
// Default: 500ms. Negative values are ignored.
func WithBatchPause(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.batchPause = d
		}
	}
}

// WithAllowUnconfirmed accepts matches of any tier, including the
// first-candidate guess, for both the target and the users.
// By default the target must match at the contains tier or better and
// users must match by id, exact value or code.
func WithAllowUnconfirmed(allow bool) Option {
	return func(o *options) {
		o.allowUnconfirmed = allow
	}
}

// WithLogger sets the structured logger.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics registers bulk item counters on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
