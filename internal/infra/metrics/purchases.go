package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		purchasesTotal,
		purchasesRevenueTotal,
		purchasesExpiredTotal,
		usageMinutesTotal,
	)
}

var (
	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchases by settlement state (pending/settled/failed).",
		},
		[]string{"state"},
	)

	purchasesRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_revenue_cents_total",
			Help: "The total monetary value of settled purchases, labeled by currency.",
		},
		[]string{"currency"},
	)

	purchasesExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchases_expired_total",
			Help: "Purchases marked expired, from any path (sweep, usage report, access gate).",
		},
	)

	usageMinutesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_minutes_total",
			Help: "Accumulated usage minutes accepted from client sessions.",
		},
	)
)

func IncPurchase(state string) {
	purchasesTotal.WithLabelValues(norm(state)).Inc()
}

func AddPurchaseRevenue(currency string, amountCents int64) {
	purchasesRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amountCents))
}

func IncPurchasesExpired(count int) {
	purchasesExpiredTotal.Add(float64(count))
}

func AddUsageMinutes(minutes int) {
	usageMinutesTotal.Add(float64(minutes))
}
