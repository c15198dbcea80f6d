package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	requestDuration *prometheus.HistogramVec
	loginAttempts   *prometheus.CounterVec
	donations       prometheus.Counter
	donationAmount  prometheus.Histogram
}

// NewPrometheus registers the application collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "donatrack_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		loginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donatrack_login_attempts_total",
				Help: "Total login attempts by outcome",
			},
			[]string{"outcome"},
		),
		donations: factory.NewCounter(prometheus.CounterOpts{
			Name: "donatrack_donations_created_total",
			Help: "Total donations recorded",
		}),
		donationAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "donatrack_donation_amount",
			Help:    "Distribution of donated amounts",
			Buckets: []float64{5, 10, 20, 50, 100, 250, 500, 1000, 5000},
		}),
	}
}

// ObserveRequestDuration records request latency by route pattern.
func (p *PrometheusRecorder) ObserveRequestDuration(method, route string, status int, duration time.Duration) {
	p.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// IncLoginAttempt counts a login attempt by outcome.
func (p *PrometheusRecorder) IncLoginAttempt(outcome string) {
	p.loginAttempts.WithLabelValues(outcome).Inc()
}

// IncDonationCreated increments donation created counter.
func (p *PrometheusRecorder) IncDonationCreated() {
	p.donations.Inc()
}

// ObserveDonationAmount records a donated amount.
func (p *PrometheusRecorder) ObserveDonationAmount(amount float64) {
	p.donationAmount.Observe(amount)
}
