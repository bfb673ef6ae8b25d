// Package prom holds the Prometheus collectors for the receipt service.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts receipt uploads by outcome (ok, missing_file,
	// unsupported, save_error, extract_error).
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_scans_total",
		Help: "Receipt scan uploads processed, by outcome.",
	}, []string{"outcome"})

	// ParsesTotal counts parse requests by whether a printed total was found.
	ParsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_parses_total",
		Help: "Receipt texts parsed, by whether a printed total was detected.",
	}, []string{"total_found"})

	// ParseDuration observes end-to-end parse latency.
	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "receipt_parse_duration_seconds",
		Help:    "Time spent parsing and reconciling one receipt text.",
		Buckets: prometheus.DefBuckets,
	})

	// CorrectionsTotal counts items whose price was OCR-corrected.
	CorrectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipt_ocr_corrections_total",
		Help: "Item prices repaired against the printed receipt total.",
	})

	// SettlementsTotal counts settlement computations.
	SettlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipt_settlements_total",
		Help: "Settlement computations performed.",
	})
)
