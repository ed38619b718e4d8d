package resolver

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaintrub/docebo-go/client"
)

const (
	// DefaultSearchPageSize is the page size of the free-text search.
	DefaultSearchPageSize = 50

	// minSearchPageSize is the smallest page that still disambiguates.
	minSearchPageSize = 50

	// scanPageSize is the page size of the unfiltered fallback scan.
	scanPageSize = client.MaxPageSize
)

// Option configures the Resolver.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	registerer     prometheus.Registerer
	searchPageSize int
}

func defaultOptions() *options {
	return &options{searchPageSize: DefaultSearchPageSize}
}

// WithLogger sets the structured logger.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics registers resolution counters on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithSearchPageSize sets the search page size.
// Values are clamped to [50, client.MaxPageSize].
func WithSearchPageSize(n int) Option {
	return func(o *options) {
		switch {
		case n < minSearchPageSize:
			n = minSearchPageSize
		case n > client.MaxPageSize:
			n = client.MaxPageSize
		}
		o.searchPageSize = n
	}
}
