package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaiten_webhooks_received_total",
		Help: "Total number of webhook payloads accepted, labelled by event kind.",
	}, []string{"event_kind"})

	WebhooksRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kaiten_webhooks_rejected_total",
		Help: "Total number of webhook payloads rejected as invalid JSON.",
	})

	HandlerInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kaiten_handler_invocations_total",
		Help: "Total number of handler invocations, labelled by handler and status.",
	}, []string{"handler", "status"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kaiten_dispatch_duration_seconds",
		Help:    "Time spent running all handlers for a single event.",
		Buckets: prometheus.DefBuckets,
	})

	DispatchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kaiten_dispatches_in_flight",
		Help: "Number of background dispatches currently running.",
	})
)
