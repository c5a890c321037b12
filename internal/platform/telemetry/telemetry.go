// Package telemetry exposes Prometheus metrics for the clinic engine: HTTP
// request latency plus domain counters for appointments, bills and slot
// searches. Every recorder method is safe to call on a nil *Metrics so
// services can run without metrics in tests.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meditrack"

var defaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics owns a private registry so independent instances never collide.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	slotSearches    prometheus.Counter
	slotsSuggested  prometheus.Histogram
	billsGenerated  prometheus.Counter
	billsPaid       prometheus.Counter
	revenue         prometheus.Counter
}

// New builds a Metrics with its collectors registered. withRuntime adds the
// Go runtime and process collectors.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route and status.",
			Buckets:   defaultDurationBuckets,
		}, []string{"method", "route", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointment_transitions_total",
			Help:      "Appointment status changes by resulting status.",
		}, []string{"status"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Specializations inferred by symptom triage.",
		}, []string{"specialization"}),
		slotSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_searches_total",
			Help:      "Availability searches performed.",
		}),
		slotsSuggested: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slots_suggested",
			Help:      "Number of slots returned per availability search.",
			Buckets:   prometheus.LinearBuckets(0, 5, 8),
		}),
		billsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_generated_total",
			Help:      "Bills generated from appointments.",
		}),
		billsPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_paid_total",
			Help:      "Bills marked as paid.",
		}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_collected_total",
			Help:      "Sum of bill totals marked as paid.",
		}),
	}
	m.registry.MustRegister(
		m.requestDuration, m.transitions, m.recommendations,
		m.slotSearches, m.slotsSuggested,
		m.billsGenerated, m.billsPaid, m.revenue,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AppointmentTransition counts an appointment entering status.
func (m *Metrics) AppointmentTransition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

// Recommendation counts a specialization inferred from symptoms.
func (m *Metrics) Recommendation(specialization string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(specialization).Inc()
}

// SlotSearch records one availability search returning n slots.
func (m *Metrics) SlotSearch(n int) {
	if m == nil {
		return
	}
	m.slotSearches.Inc()
	m.slotsSuggested.Observe(float64(n))
}

func (m *Metrics) BillGenerated() {
	if m == nil {
		return
	}
	m.billsGenerated.Inc()
}

// BillPaid records a payment of total.
func (m *Metrics) BillPaid(total float64) {
	if m == nil {
		return
	}
	m.billsPaid.Inc()
	if total > 0 {
		m.revenue.Add(total)
	}
}

// Middleware records request latency for every route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			m.requestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
