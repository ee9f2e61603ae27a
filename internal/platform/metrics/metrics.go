package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	CertificatesIssued   prometheus.Counter
	CertificatesVerified *prometheus.CounterVec
	CertificatesRedeemed prometheus.Counter
	DeadlinesExtended    prometheus.Counter
	CategoriesApproved   prometheus.Counter
	RelayCalls           *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New creates and registers all metrics against reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction never double-registers.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CertificatesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "ecert_certificates_issued_total",
			Help: "Total number of certificates issued.",
		}),
		CertificatesVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ecert_certificates_verified_total",
			Help: "Total number of verification checks, by outcome.",
		}, []string{"outcome"}),
		CertificatesRedeemed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ecert_certificates_redeemed_total",
			Help: "Total number of certificates redeemed.",
		}),
		DeadlinesExtended: factory.NewCounter(prometheus.CounterOpts{
			Name: "ecert_deadlines_extended_total",
			Help: "Total number of deadline extensions.",
		}),
		CategoriesApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "ecert_categories_approved_total",
			Help: "Total number of approved categories.",
		}),
		RelayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ecert_relay_calls_total",
			Help: "Total number of delegated relay executions, by outcome.",
		}, []string{"outcome"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecert_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
