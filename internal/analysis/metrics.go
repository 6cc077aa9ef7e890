package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus collectors for analyzer runs
type Collector struct {
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	SourceItems  *prometheus.GaugeVec
	SourceErrors *prometheus.CounterVec
}

// NewCollector creates the analyzer collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendreel_analysis_runs_total",
				Help: "Total analyzer runs, by outcome.",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trendreel_analysis_duration_seconds",
				Help:    "Analyzer run duration in seconds.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		SourceItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendreel_source_items",
				Help: "Items collected from each platform in the last run.",
			},
			[]string{"source"},
		),
		SourceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendreel_source_errors_total",
				Help: "Total collection failures, by platform.",
			},
			[]string{"source"},
		),
	}

	if reg != nil {
		reg.MustRegister(c.Runs, c.RunDuration, c.SourceItems, c.SourceErrors)
	}
	return c
}
