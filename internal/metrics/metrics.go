package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hackgods/clinic-scheduling/internal/slots"
)

// SchedulingMetrics exposes counters/histograms for slot and booking flows.
type SchedulingMetrics struct {
	slotsClassified *prometheus.CounterVec
	bookings        *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		slotsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "slots",
			Name:      "classified_total",
			Help:      "Slots classified per status",
		}, []string{"status"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Name:      "bookings_total",
			Help:      "Appointment create/update attempts by outcome",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.slotsClassified, m.bookings, m.httpDuration)
	return m
}

func (m *SchedulingMetrics) ObserveClassification(sum slots.Summary) {
	if m == nil {
		return
	}
	m.slotsClassified.WithLabelValues(string(slots.StatusStart)).Add(float64(sum.Start))
	m.slotsClassified.WithLabelValues(string(slots.StatusOccupied)).Add(float64(sum.Occupied))
	m.slotsClassified.WithLabelValues(string(slots.StatusAvailable)).Add(float64(sum.Available))
}

func (m *SchedulingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}
