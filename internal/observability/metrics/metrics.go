package metrics

import "github.com/prometheus/client_golang/prometheus"

// VendorMetrics exposes counters/histograms for USchedule API calls.
type VendorMetrics struct {
	requestTotal   *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
}

func NewVendorMetrics(reg prometheus.Registerer) *VendorMetrics {
	m := &VendorMetrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loftgolf",
			Subsystem: "uschedule",
			Name:      "request_total",
			Help:      "Total USchedule API requests",
		}, []string{"endpoint", "status"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "loftgolf",
			Subsystem: "uschedule",
			Name:      "request_seconds",
			Help:      "Latency of USchedule API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestTotal, m.requestSeconds)
	return m
}

func (m *VendorMetrics) ObserveRequest(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(endpoint, status).Inc()
	m.requestSeconds.WithLabelValues(endpoint).Observe(seconds)
}

// BookingMetrics tracks booking funnel outcomes.
type BookingMetrics struct {
	confirmTotal *prometheus.CounterVec
	cancelTotal  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		confirmTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loftgolf",
			Subsystem: "booking",
			Name:      "confirm_total",
			Help:      "Booking confirmation attempts",
		}, []string{"outcome"}),
		cancelTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loftgolf",
			Subsystem: "booking",
			Name:      "cancel_total",
			Help:      "Appointment cancellation attempts",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.confirmTotal, m.cancelTotal)
	return m
}

func (m *BookingMetrics) ObserveConfirm(outcome string) {
	if m == nil {
		return
	}
	m.confirmTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCancel(outcome string) {
	if m == nil {
		return
	}
	m.cancelTotal.WithLabelValues(outcome).Inc()
}
