package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seats",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seats",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route"},
	)

	CheckoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seats",
			Name:      "checkouts_total",
			Help:      "Checkout initializations by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seats",
			Name:      "gateway_notifications_total",
			Help:      "Gateway notifications by outcome",
		},
		[]string{"outcome"},
	)

	SeatCommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seats",
			Name:      "seat_commits_total",
			Help:      "Seat commits into schedule inventory by outcome",
		},
		[]string{"outcome"},
	)

	AuditEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seats",
			Name:      "audit_events_total",
			Help:      "Payment events consumed by the audit service",
		},
		[]string{"event_type", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration, CheckoutsTotal, NotificationsTotal,
		SeatCommitsTotal, AuditEventsTotal)
}

func IncCheckout(outcome string)     { CheckoutsTotal.WithLabelValues(outcome).Inc() }
func IncNotification(outcome string) { NotificationsTotal.WithLabelValues(outcome).Inc() }
func IncSeatCommit(outcome string)   { SeatCommitsTotal.WithLabelValues(outcome).Inc() }

func IncAudit(eventType, outcome string) {
	AuditEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func ObserveRequest(route, method, status string, seconds float64) {
	RequestsTotal.WithLabelValues(route, method, status).Inc()
	RequestDuration.WithLabelValues(route).Observe(seconds)
}
