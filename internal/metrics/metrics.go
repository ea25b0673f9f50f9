// Package metrics registers the Prometheus collectors for the money-moving
// flows and exposes the /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PurchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_purchases_total",
			Help: "Data purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_settlements_total",
			Help: "Wallet funding settlement attempts by outcome",
		},
		[]string{"outcome"},
	)

	RefundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_refunds_total",
			Help: "Wallet refund credits by kind",
		},
		[]string{"kind"},
	)

	DisputesResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disputes_resolved_total",
			Help: "Dispute resolutions by outcome",
		},
		[]string{"outcome"},
	)

	WebhooksRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhooks_rejected_total",
			Help: "Webhook deliveries rejected for bad signatures",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(PurchasesTotal)
	prometheus.MustRegister(SettlementsTotal)
	prometheus.MustRegister(RefundsTotal)
	prometheus.MustRegister(DisputesResolvedTotal)
	prometheus.MustRegister(WebhooksRejectedTotal)
}
