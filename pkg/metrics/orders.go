package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records refund and webhook outcomes.
type OrderMetrics struct {
	refundDuration *prometheus.HistogramVec
	refundOutcome  *prometheus.CounterVec
	webhookEvents  *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	refundDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "refund_duration_seconds",
		Help:    "End-to-end duration of refund coordination in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	refundOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refund_total",
		Help: "Refund attempts by outcome.",
	}, []string{"outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook events by type and result.",
	}, []string{"event_type", "result"})
	reg.MustRegister(refundDuration, refundOutcome, webhookEvents)
	return &OrderMetrics{
		refundDuration: refundDuration,
		refundOutcome:  refundOutcome,
		webhookEvents:  webhookEvents,
	}
}

// ObserveRefund records one refund attempt with its duration.
func (m *OrderMetrics) ObserveRefund(outcome string, duration time.Duration) {
	if m == nil || m.refundOutcome == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.refundOutcome.WithLabelValues(label).Inc()
	m.refundDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncWebhookEvent counts one processed webhook event.
func (m *OrderMetrics) IncWebhookEvent(eventType, result string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return strings.ReplaceAll(value, ".", "_")
}
