package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead API.
type LeadMetrics struct {
	leadsCreated  prometheus.Counter
	statusChanges *prometheus.CounterVec
	noteOps       *prometheus.CounterVec
	loginAttempts *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		leadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "created_total",
			Help:      "Total leads captured",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "status_changes_total",
			Help:      "Total status updates by target stage",
		}, []string{"status"}),
		noteOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "leads",
			Name:      "note_ops_total",
			Help:      "Total note mutations by operation",
		}, []string{"op"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total login attempts by outcome",
		}, []string{"outcome"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsCreated, m.statusChanges, m.noteOps, m.loginAttempts, m.requestTime)
	return m
}

func (m *LeadMetrics) ObserveLeadCreated() {
	if m == nil {
		return
	}
	m.leadsCreated.Inc()
}

func (m *LeadMetrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

func (m *LeadMetrics) ObserveNoteOp(op string) {
	if m == nil {
		return
	}
	m.noteOps.WithLabelValues(op).Inc()
}

func (m *LeadMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveRequest(route, method string, seconds float64) {
	if m == nil {
		return
	}
	m.requestTime.WithLabelValues(route, method).Observe(seconds)
}
