package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaystackCallMetrics records metadata for outbound Paystack API calls.
type PaystackCallMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewPaystackCallMetrics registers the call metrics on the provided registerer.
func NewPaystackCallMetrics(reg prometheus.Registerer) *PaystackCallMetrics {
	if reg == nil {
		return &PaystackCallMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paystack_call_duration_seconds",
		Help:    "Duration of Paystack API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paystack_call_success",
		Help: "Successful Paystack API calls.",
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paystack_call_failure",
		Help: "Failed Paystack API calls.",
	}, []string{"operation"})
	reg.MustRegister(duration, success, failure)
	return &PaystackCallMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *PaystackCallMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named operation.
func (m *PaystackCallMetrics) IncSuccess(operation string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncFailure increments the failure counter for the named operation.
func (m *PaystackCallMetrics) IncFailure(operation string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
