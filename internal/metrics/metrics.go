// Package metrics holds the notation counters exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/localnerve/transform-studio/internal/notation"
)

const namespace = "transform_studio"

var (
	// Renders counts rendered records by transform type.
	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notation_renders_total",
		Help:      "Rendered notation records by transform type.",
	}, []string{"type"})

	// UnknownTypes counts records rendered by the fallback rule.
	UnknownTypes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notation_unknown_types_total",
		Help:      "Records whose transform type had no rule.",
	})
)

// Observe counts a rendered record and every record nested under it.
func Observe(r notation.Record) {
	// Only transform objects carry an id.
	if r.ID != "" {
		Renders.WithLabelValues(r.Type).Inc()
		if _, ok := notation.Lookup(r.Type); !ok {
			UnknownTypes.Inc()
		}
	}
	for _, in := range r.Inputs {
		Observe(in)
	}
}
