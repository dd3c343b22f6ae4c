// Invariants are conditions our own code guarantees; a violation means there is a bug in octa, not bad input.
// Raising one records an error log and bumps the `invariants_total` counter instead of crashing the server, except in
// test builds where it panics so the bug surfaces right away. The caller still has to handle the broken case itself,
// usually with an early return.
//
// Do not raise invariants for conditions caused by the outside world: a client sending a malformed numeral or an
// unreadable numeral file is an error, not an invariant violation. A digit list that changes while our own code ranges
// over it, or a shard count we validated earlier turning out non-positive, are invariant violations.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// RaiseInvariant reports a violated invariant of `module`; `args` are slog key/value attributes.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns how many times the invariant `invariantType` of `module` was raised.
func GetMetricValue(module, invariantType string) int {
	var metric = &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error("Failed to read invariant metric.", "error", err)
		return 0
	}
	return int(metric.Counter.GetValue())
}
