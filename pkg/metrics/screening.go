package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "screening"

// ScreeningMetrics is the Prometheus backed Recorder. It also carries the outbox relay gauges.
type ScreeningMetrics struct {
	Operations       *prometheus.CounterVec
	Durations        *prometheus.HistogramVec
	Errors           *prometheus.CounterVec
	OutboxPublished  prometheus.Counter
	OutboxRetried    prometheus.Counter
	OutboxBatchSize  prometheus.Gauge
	ReportsGenerated prometheus.Counter
}

// NewScreeningMetrics creates the collectors and registers them on registry.
func NewScreeningMetrics(registry prometheus.Registerer) (*ScreeningMetrics, error) {
	m := &ScreeningMetrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of use case operations by outcome.",
		}, []string{"operation", "status"}),
		Durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of use case operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"operation"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of failed operations by error kind.",
		}, []string{"operation", "error_type"}),
		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Total number of outbox events delivered to the broker.",
		}),
		OutboxRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_retried_total",
			Help:      "Total number of outbox events scheduled for retry.",
		}),
		OutboxBatchSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_last_batch_size",
			Help:      "Number of events picked up by the last relay tick.",
		}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Total number of PDF reports stored.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Operations,
		m.Durations,
		m.Errors,
		m.OutboxPublished,
		m.OutboxRetried,
		m.OutboxBatchSize,
		m.ReportsGenerated,
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics - NewScreeningMetrics - registry.Register: %w", err)
		}
	}

	return m, nil
}

func (m *ScreeningMetrics) RecordOperation(operation, status string) {
	m.Operations.WithLabelValues(operation, status).Inc()
	if operation == "report" && status == "success" {
		m.ReportsGenerated.Inc()
	}
}

func (m *ScreeningMetrics) RecordDuration(operation string, seconds float64) {
	m.Durations.WithLabelValues(operation).Observe(seconds)
}

func (m *ScreeningMetrics) RecordError(operation, errorType string) {
	m.Errors.WithLabelValues(operation, errorType).Inc()
}

// ObserveRelayBatch records one outbox relay tick.
func (m *ScreeningMetrics) ObserveRelayBatch(picked, published, retried int) {
	m.OutboxBatchSize.Set(float64(picked))
	m.OutboxPublished.Add(float64(published))
	m.OutboxRetried.Add(float64(retried))
}
