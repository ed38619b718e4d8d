// Package metrics holds the Prometheus collectors shared by the client and
// bulk packages. A nil *Collector is valid and records nothing.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector groups the SDK's Prometheus metrics.
type Collector struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	tokenExchanges *prometheus.CounterVec
	retries        prometheus.Counter
	bulkItems      *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
}

// New creates a Collector and registers it with reg.
// Collectors already registered by an earlier Collector are reused.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docebo_client_requests_total",
			Help: "Platform API requests by method and status class.",
		}, []string{"method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docebo_client_request_duration_seconds",
			Help:    "Platform API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		tokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docebo_client_token_exchanges_total",
			Help: "OAuth2 credential exchanges by result.",
		}, []string{"result"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docebo_client_retries_total",
			Help: "Retried platform API attempts.",
		}),
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docebo_bulk_items_total",
			Help: "Bulk operation items by operation and outcome.",
		}, []string{"operation", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docebo_resolver_resolutions_total",
			Help: "Resource resolutions by kind and match tier.",
		}, []string{"kind", "tier"}),
	}

	var err error
	c.requests, err = register(reg, c.requests)
	if err != nil {
		return nil, err
	}
	c.requestLatency, err = register(reg, c.requestLatency)
	if err != nil {
		return nil, err
	}
	c.tokenExchanges, err = register(reg, c.tokenExchanges)
	if err != nil {
		return nil, err
	}
	c.retries, err = register(reg, c.retries)
	if err != nil {
		return nil, err
	}
	c.bulkItems, err = register(reg, c.bulkItems)
	if err != nil {
		return nil, err
	}
	c.resolutions, err = register(reg, c.resolutions)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return col, err
	}
	return col, nil
}

// ObserveRequest records one HTTP attempt. status 0 means transport failure.
func (c *Collector) ObserveRequest(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(method, statusClass(status)).Inc()
	c.requestLatency.WithLabelValues(method).Observe(d.Seconds())
}

// TokenExchange records one credential exchange.
func (c *Collector) TokenExchange(ok bool) {
	if c == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	c.tokenExchanges.WithLabelValues(result).Inc()
}

// Retry records a retried attempt.
func (c *Collector) Retry() {
	if c == nil {
		return
	}
	c.retries.Inc()
}

// BulkItem records the outcome of one bulk item.
func (c *Collector) BulkItem(operation string, succeeded bool) {
	if c == nil {
		return
	}
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	c.bulkItems.WithLabelValues(operation, outcome).Inc()
}

// Resolution records a resolver result. tier is "not_found" on a miss.
func (c *Collector) Resolution(kind, tier string) {
	if c == nil {
		return
	}
	c.resolutions.WithLabelValues(kind, tier).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
