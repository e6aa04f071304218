package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	ExportDuration    prometheus.Histogram
	ExportRows        prometheus.Histogram
	ExportOverBudget  prometheus.Counter
	TranslationWrites *prometheus.CounterVec
}

// NewMetrics registers the service collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "i18n",
			Name:      "export_duration_seconds",
			Help:      "Time spent producing an export, from the table scan through JSON serialization.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		ExportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "i18n",
			Name:      "export_rows",
			Help:      "Rows read per export.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),
		ExportOverBudget: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "i18n",
			Name:      "export_over_budget_total",
			Help:      "Exports that took longer than the configured latency budget.",
		}),
		TranslationWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "i18n",
			Name:      "translation_writes_total",
			Help:      "Translation writes by operation.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.ExportDuration,
		m.ExportRows,
		m.ExportOverBudget,
		m.TranslationWrites,
	)

	return m
}

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func (m *Metrics) ObserveExport(elapsed time.Duration, rows int, budget time.Duration) {
	m.ExportDuration.Observe(elapsed.Seconds())
	m.ExportRows.Observe(float64(rows))
	if elapsed > budget {
		m.ExportOverBudget.Inc()
	}
}
