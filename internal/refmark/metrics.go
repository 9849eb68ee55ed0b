// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refmark

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "refmark"

// Metrics holds the Prometheus collectors of a Registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Rescans         prometheus.Counter
	MarksRegistered prometheus.Counter
	MarksSkipped    prometheus.Counter
	Rewrites        *prometheus.CounterVec
	RenumberPasses  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rescans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rescans_total",
			Help:      "Total number of document rescans.",
		}),
		MarksRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "marks_registered_total",
			Help:      "Reference marks rebuilt from the document during rescans.",
		}),
		MarksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "marks_skipped_total",
			Help:      "Annotations skipped during rescans (malformed name or missing anchor).",
		}),
		Rewrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rewrites_total",
			Help:      "Reference mark rewrites by result (ok, failed).",
		}, []string{"result"}),
		RenumberPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "renumber_passes_total",
			Help:      "Total number of renumbering passes.",
		}),
	}
	reg.MustRegister(m.Rescans, m.MarksRegistered, m.MarksSkipped, m.Rewrites, m.RenumberPasses)
	return m
}

func (m *Metrics) observeScan(s ScanSummary) {
	if m == nil {
		return
	}
	m.Rescans.Inc()
	m.MarksRegistered.Add(float64(s.Registered))
	m.MarksSkipped.Add(float64(s.Skipped))
}

func (m *Metrics) observeRewrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.Rewrites.WithLabelValues(result).Inc()
}

func (m *Metrics) observeRenumber() {
	if m == nil {
		return
	}
	m.RenumberPasses.Inc()
}
