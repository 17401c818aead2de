package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts service operations by name and outcome.
type Metrics struct {
	ops *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dental",
			Name:      "dentist_operations_total",
			Help:      "Dentist service operations by operation and result.",
		}, []string{"operation", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.ops)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
}
