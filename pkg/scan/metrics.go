package scan

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tablesScannedTotal counts finished table scans per source and outcome.
	tablesScannedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whiterabbit_tables_scanned_total",
			Help: "Total number of scanned tables",
		},
		[]string{"source", "status"},
	)

	// rowsProcessedTotal counts the rows whose values were checked.
	rowsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whiterabbit_rows_processed_total",
			Help: "Total number of rows checked while scanning",
		},
		[]string{"source"},
	)

	tableScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whiterabbit_table_scan_duration_seconds",
			Help:    "Duration of a single table scan",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		},
		[]string{"source"},
	)
)
