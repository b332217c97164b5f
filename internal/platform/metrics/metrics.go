package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ShipmentEventsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipment_events_recorded_total",
			Help: "Shipment events persisted, by type and source",
		},
		[]string{"type", "source"},
	)

	NotificationPublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shipment_notification_publish_failures_total",
			Help: "Shipment notifications that could not be published",
		},
	)

	NotificationsHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipment_notifications_handled_total",
			Help: "Shipment notifications consumed by the notifier, by type",
		},
		[]string{"type"},
	)
)

var registerOnce sync.Once

// Register adds all collectors to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(ShipmentEventsRecordedTotal)
		prometheus.MustRegister(NotificationPublishFailuresTotal)
		prometheus.MustRegister(NotificationsHandledTotal)
	})
}
