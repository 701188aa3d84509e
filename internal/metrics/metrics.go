package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChargesCreated counts new charges created on Coinbase Commerce.
	ChargesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinbase_charges_created_total",
		Help: "Number of new Coinbase Commerce charges created.",
	})

	// ChargesReused counts pay calls answered with an existing hosted URL.
	ChargesReused = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinbase_charges_reused_total",
		Help: "Number of pay calls that reused an existing unpaid charge.",
	})

	// PaymentInitiationFailures counts pay calls that could not produce a URL.
	PaymentInitiationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinbase_payment_initiation_failures_total",
		Help: "Number of pay calls that failed to initiate a charge.",
	})

	// WebhookEvents counts processed webhook deliveries by event type and outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinbase_webhook_events_total",
		Help: "Number of Coinbase Commerce webhook deliveries by type and outcome.",
	}, []string{"event_type", "outcome"})
)
