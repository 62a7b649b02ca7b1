package payments

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	outcomeCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcomes_total",
		Help: "Payment outcomes by gateway and kind.",
	}, []string{"gateway", "outcome"})

	webhookCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Webhook ingestion results by provider.",
	}, []string{"provider", "result"})
)

func observeOutcome(gateway, outcome string) {
	outcomeCounter.WithLabelValues(gateway, outcome).Inc()
}

func observeWebhook(provider, result string) {
	webhookCounter.WithLabelValues(provider, result).Inc()
}
