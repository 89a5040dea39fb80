// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zenith-sync/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Transport metrics
	InboundMessages  *prometheus.CounterVec
	OutboundMessages *prometheus.CounterVec
	Reconnects       prometheus.Counter
	Connected        prometheus.Gauge

	// Publisher metrics
	DataErrors          *prometheus.CounterVec
	ActiveSubscriptions prometheus.Gauge
	PendingOutbound     prometheus.Gauge
	HandleLatency       prometheus.Histogram

	// List metrics
	ListRecords *prometheus.GaugeVec
	ListUsable  *prometheus.GaugeVec

	// Storage metrics
	AuditRecordsStored prometheus.Counter
	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a Metrics instance registered with reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "zenith_sync"
	}
	factory := promauto.With(reg)

	return &Metrics{
		InboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "inbound_messages_total",
			Help:      "Total number of inbound messages by controller and topic",
		}, []string{"controller", "topic"}),
		OutboundMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "outbound_messages_total",
			Help:      "Total number of outbound messages by action",
		}, []string{"action"}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "reconnects_total",
			Help:      "Total number of transport reconnects",
		}),
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "connected",
			Help:      "1 while the transport is connected",
		}),

		DataErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "data_errors_total",
			Help:      "Total number of data errors by error code",
		}, []string{"code"}),
		ActiveSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "active_subscriptions",
			Help:      "Current number of active subscriptions",
		}),
		PendingOutbound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "pending_outbound",
			Help:      "Outbound messages queued while disconnected",
		}),
		HandleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "handle_latency_seconds",
			Help:      "Inbound message handling latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ListRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lists",
			Name:      "records",
			Help:      "Current number of records by list",
		}, []string{"list"}),
		ListUsable: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lists",
			Name:      "usable",
			Help:      "1 while the list is usable",
		}, []string{"list"}),

		AuditRecordsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "audit_records_stored_total",
			Help:      "Total number of order audit records stored",
		}),
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordInbound counts an inbound message.
func (m *Metrics) RecordInbound(controller, topic string) {
	m.InboundMessages.WithLabelValues(controller, topic).Inc()
}

// RecordOutbound counts an outbound message.
func (m *Metrics) RecordOutbound(action string) {
	m.OutboundMessages.WithLabelValues(action).Inc()
}

// RecordDataError counts err by its error code. Errors that are not data
// errors are counted as "other".
func (m *Metrics) RecordDataError(err error) {
	code := "other"
	var de *domain.DataError
	if errors.As(err, &de) {
		code = string(de.Code)
	}
	m.DataErrors.WithLabelValues(code).Inc()
}

// SetConnected updates the connection gauge.
func (m *Metrics) SetConnected(connected bool) {
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

// UpdateList updates the gauges of one list.
func (m *Metrics) UpdateList(list string, records int, usable bool) {
	m.ListRecords.WithLabelValues(list).Set(float64(records))
	if usable {
		m.ListUsable.WithLabelValues(list).Set(1)
	} else {
		m.ListUsable.WithLabelValues(list).Set(0)
	}
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
