package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Brownie44l1/webserver/internal/response"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds server runtime metrics. Counters are kept locally for Stats
// and mirrored to the global OpenTelemetry meter provider.
type Metrics struct {
	RequestsTotal atomic.Int64
	Found         atomic.Int64
	NotFound      atomic.Int64
	Abandoned     atomic.Int64
	BytesSent     atomic.Int64

	// Latency tracking (simplified - use histogram in production)
	TotalLatencyNs atomic.Int64

	requests  metric.Int64Counter
	bytesSent metric.Int64Counter
	abandoned metric.Int64Counter
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}

	var err error
	m.requests, err = meter.Int64Counter("webserver.requests",
		metric.WithDescription("Requests answered, by status code"),
		metric.WithUnit("{request}"))
	if err != nil {
		m.requests = noop.Int64Counter{}
	}

	m.bytesSent, err = meter.Int64Counter("webserver.bytes_sent",
		metric.WithDescription("Response body bytes written"),
		metric.WithUnit("By"))
	if err != nil {
		m.bytesSent = noop.Int64Counter{}
	}

	m.abandoned, err = meter.Int64Counter("webserver.connections.abandoned",
		metric.WithDescription("Connections closed without a response"),
		metric.WithUnit("{connection}"))
	if err != nil {
		m.abandoned = noop.Int64Counter{}
	}

	return m
}

// RecordRequest records a completed request
func (m *Metrics) RecordRequest(ctx context.Context, code response.StatusCode, bodyBytes int64, duration time.Duration) {
	m.RequestsTotal.Add(1)
	m.BytesSent.Add(bodyBytes)
	m.TotalLatencyNs.Add(duration.Nanoseconds())

	if code.IsSuccess() {
		m.Found.Add(1)
	} else {
		m.NotFound.Add(1)
	}

	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.Int("http.status_code", int(code))))
	m.bytesSent.Add(ctx, bodyBytes)
}

// RecordAbandoned records a connection dropped before a response was built
func (m *Metrics) RecordAbandoned(ctx context.Context) {
	m.Abandoned.Add(1)
	m.abandoned.Add(ctx, 1)
}

// AverageLatency returns average request latency
func (m *Metrics) AverageLatency() time.Duration {
	totalReqs := m.RequestsTotal.Load()
	if totalReqs == 0 {
		return 0
	}

	avgNs := m.TotalLatencyNs.Load() / totalReqs
	return time.Duration(avgNs)
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	RequestsTotal  int64
	Found          int64
	NotFound       int64
	Abandoned      int64
	BytesSent      int64
	AverageLatency time.Duration
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		RequestsTotal:  m.RequestsTotal.Load(),
		Found:          m.Found.Load(),
		NotFound:       m.NotFound.Load(),
		Abandoned:      m.Abandoned.Load(),
		BytesSent:      m.BytesSent.Load(),
		AverageLatency: m.AverageLatency(),
	}
}
