package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cart_mutations_total",
			Help:      "Total number of cart mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ordersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Total number of orders placed by fulfillment method",
		},
		[]string{"fulfillment"},
	)

	paymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "payments_total",
			Help:      "Total number of charge attempts by provider and status",
		},
		[]string{"provider", "status"},
	)

	newsletterSignupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "newsletter_signups_total",
			Help:      "Total number of newsletter sign-up attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// outcome labels a mutation result for cartMutationsTotal.
func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
