package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompressionRatio is the ratio of decompressed to compressed container
	// bytes, observed per write.
	CompressionRatio = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logpress_compression_ratio",
			Help:    "Ratio of original to compressed container size",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
		[]string{"entropy_algorithm"},
	)

	// CompressionDuration is wall time spent writing a container, from
	// ColumnsFinalized through the final entropy-coded bytes.
	CompressionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logpress_compression_duration_seconds",
			Help:    "Time spent writing a container",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entropy_algorithm"},
	)

	// QueryDuration is wall time spent servicing one query engine call.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logpress_query_duration_seconds",
			Help:    "Time spent servicing a query",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// QueryScannedLines counts how many column entries a query had to scan
	// to produce its result.
	QueryScannedLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logpress_query_scanned_lines_total",
			Help: "Total lines scanned across all queries",
		},
		[]string{"operation"},
	)

	// TemplatesExtracted counts distinct templates produced per encode run.
	TemplatesExtracted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logpress_templates_extracted",
		Help:    "Number of templates extracted per compression run",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
	})

	// ContainersOpened counts reader opens, by outcome.
	ContainersOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logpress_containers_opened_total",
			Help: "Total container open attempts",
		},
		[]string{"outcome"},
	)

	// ContainersWritten counts writer calls, by outcome.
	ContainersWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logpress_containers_written_total",
			Help: "Total container write attempts",
		},
		[]string{"outcome"},
	)
)
