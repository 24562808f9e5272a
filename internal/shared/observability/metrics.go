package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ksymtypes_parsing_seconds",
		Help:    "Time spent parsing a symtypes file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	FilesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ksymtypes_files_parsed_total",
		Help: "Total number of symtypes files parsed, by outcome.",
	}, []string{"status"})

	RecordsParsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksymtypes_records_parsed_total",
		Help: "Total number of type records read from symtypes files.",
	})

	ConsolidatedTypes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ksymtypes_consolidated_types",
		Help: "Number of distinct type and export keys in the last consolidation.",
	})

	ConsolidationConflicts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ksymtypes_consolidation_conflicts",
		Help: "Number of keys with more than one variant in the last consolidation.",
	}, []string{"kind"})

	ComparedSymbolsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ksymtypes_compared_symbols_total",
		Help: "Total number of exported symbols compared.",
	})

	ComparisonDifferences = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ksymtypes_comparison_differences",
		Help: "Differences found by the last comparison.",
	}, []string{"kind"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ksymtypes_phase_seconds",
		Help:    "Time spent on high-level phases such as loading, consolidating and comparing.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
)

// WriteTextfile dumps all registered metrics in the text exposition format, for
// collection by the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
