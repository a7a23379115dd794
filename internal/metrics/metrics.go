// README: Prometheus collectors for quotes, reservations and HTTP traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	FareQuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fare_quotes_total",
			Help: "Fare quotes computed, by outcome",
		},
		[]string{"outcome"},
	)

	FareAdjustmentsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fare_adjustments_applied_total",
			Help: "Adjustment rules applied to quotes, by category",
		},
		[]string{"category"},
	)

	FareQuoteFinalPrice = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fare_quote_final_price",
			Help:    "Distribution of quoted final prices (CLP)",
			Buckets: []float64{10000, 25000, 50000, 75000, 100000, 150000, 250000, 500000},
		},
	)

	TariffCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tariff_cache_lookups_total",
			Help: "Tariff cache lookups, by result",
		},
		[]string{"result"},
	)

	ReservationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Reservations created, by payment option",
		},
		[]string{"payment_option"},
	)

	ReservationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_expired_total",
			Help: "Pending reservations cancelled for payment timeout",
		},
	)
)
