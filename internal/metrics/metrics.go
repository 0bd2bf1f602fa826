package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the service's counters, histograms and feed gauges.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	notifications *prometheus.CounterVec
	bookings      *prometheus.CounterVec
	feedValue     *prometheus.GaugeVec
	feedTicks     prometheus.Counter
	publishErrors *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsync",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "healthsync",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsync",
			Subsystem: "notify",
			Name:      "posted_total",
			Help:      "Notifications posted by kind and placement",
		}, []string{"kind", "placement"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsync",
			Subsystem: "appointments",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		feedValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "healthsync",
			Subsystem: "feed",
			Name:      "metric_value",
			Help:      "Current simulated value per health metric",
		}, []string{"metric"}),
		feedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "healthsync",
			Subsystem: "feed",
			Name:      "ticks_total",
			Help:      "Simulated feed updates applied",
		}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "healthsync",
			Subsystem: "feed",
			Name:      "publish_errors_total",
			Help:      "Snapshot publish failures by publisher",
		}, []string{"publisher"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if m.gatherer == nil {
		m.gatherer = prometheus.DefaultGatherer
	}
	reg.MustRegister(m.httpRequests, m.httpLatency, m.notifications, m.bookings,
		m.feedValue, m.feedTicks, m.publishErrors)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) ObserveNotification(kind, placement string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, placement).Inc()
}

// ObserveBooking counts a booking outcome: rejected, pending, confirmed or cancelled.
func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetFeedValue(metric string, v float64) {
	if m == nil {
		return
	}
	m.feedValue.WithLabelValues(metric).Set(v)
}

func (m *Metrics) ObserveTick() {
	if m == nil {
		return
	}
	m.feedTicks.Inc()
}

func (m *Metrics) ObservePublishError(publisher string) {
	if m == nil {
		return
	}
	m.publishErrors.WithLabelValues(publisher).Inc()
}
