// Package metrics holds the prometheus collectors for the load and filter path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FieldParseDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedash_field_parse_degraded_total",
			Help: "Fields that failed strict parsing and fell back to their default",
		},
		[]string{"field"},
	)

	Loads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviedash_loads_total",
			Help: "Canonical table loads by outcome",
		},
		[]string{"outcome"}, // loaded, cached, failed
	)

	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviedash_load_duration_seconds",
			Help:    "Time spent reading and normalizing a source",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	FilterRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviedash_filter_rows",
			Help:    "Rows returned by a filter evaluation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
