package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed on /metrics.
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ads
	AdsBooked          *prometheus.CounterVec
	AdBookingConflicts prometheus.Counter
	AdsCancelled       prometheus.Counter
	AdClicks           prometheus.Counter
	AdImpressions      prometheus.Counter
	CalendarCacheHits  *prometheus.CounterVec

	// Revenue verification
	ProviderVerifications *prometheus.CounterVec
	ProviderFetchDuration *prometheus.HistogramVec

	// Notifications
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec

	// Live calendar subscribers
	CalendarSubscribers prometheus.Gauge
}

var (
	// DefaultMetrics is the process-wide metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics registers all collectors with the default registry. Call it once.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustmrr_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustmrr_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),

		AdsBooked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustmrr_ads_booked_total",
				Help: "Total number of advertisements booked",
			},
			[]string{"slot"},
		),
		AdBookingConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustmrr_ad_booking_conflicts_total",
			Help: "Bookings rejected because the slot was already taken",
		}),
		AdsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustmrr_ads_cancelled_total",
			Help: "Total number of advertisements cancelled",
		}),
		AdClicks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustmrr_ad_clicks_total",
			Help: "Total number of recorded ad clicks",
		}),
		AdImpressions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trustmrr_ad_impressions_total",
			Help: "Total number of recorded ad impressions",
		}),
		CalendarCacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustmrr_calendar_cache_lookups_total",
				Help: "Calendar cache lookups by result",
			},
			[]string{"result"},
		),

		ProviderVerifications: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustmrr_provider_verifications_total",
				Help: "Revenue verifications by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		ProviderFetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trustmrr_provider_fetch_duration_seconds",
				Help:    "Duration of provider revenue fetches in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),

		NotificationsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustmrr_notifications_sent_total",
				Help: "Notifications handed to the sender",
			},
			[]string{"kind"},
		),
		NotificationsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trustmrr_notifications_failed_total",
				Help: "Notifications the sender rejected",
			},
			[]string{"kind"},
		),

		CalendarSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "trustmrr_calendar_subscribers",
			Help: "Open websocket connections receiving calendar updates",
		}),
	}
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) RecordBooking(slot string) {
	m.AdsBooked.WithLabelValues(slot).Inc()
}

func (m *Metrics) RecordBookingConflict() {
	m.AdBookingConflicts.Inc()
}

func (m *Metrics) RecordCancellation() {
	m.AdsCancelled.Inc()
}

func (m *Metrics) RecordClick() {
	m.AdClicks.Inc()
}

func (m *Metrics) RecordImpressions(n int) {
	if n > 0 {
		m.AdImpressions.Add(float64(n))
	}
}

func (m *Metrics) RecordCalendarCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CalendarCacheHits.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordVerification(provider, outcome string, seconds float64) {
	m.ProviderVerifications.WithLabelValues(provider, outcome).Inc()
	m.ProviderFetchDuration.WithLabelValues(provider).Observe(seconds)
}

func (m *Metrics) RecordNotification(kind string, err error) {
	if err != nil {
		m.NotificationsFailed.WithLabelValues(kind).Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(kind).Inc()
}
