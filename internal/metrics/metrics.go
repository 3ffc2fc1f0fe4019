package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memprep_files_processed_total",
		Help: "Files handled by each pipeline rule",
	}, []string{"rule"})

	WordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memprep_words_written_total",
		Help: "Fixed-point words written to memory files",
	})

	LinesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "memprep_lines_skipped_total",
		Help: "Input lines skipped because they did not parse as a number",
	}, []string{"file"})

	WordsWrapped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memprep_words_wrapped_total",
		Help: "Converted values outside the fixed-point range that wrapped on masking",
	})

	TokensClamped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memprep_tokens_clamped_total",
		Help: "Input vector tokens saturated to the fixed-point range",
	})

	GuardSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "memprep_guard_skips_total",
		Help: "In-place rewrites skipped because the file was already processed",
	})

	CompareRMSE = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "memprep_compare_rmse",
		Help: "RMSE of the last comparison, per axis and overall",
	}, []string{"axis"})

	CompareMaxDiff = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "memprep_compare_max_abs_diff",
		Help: "Maximum absolute difference of the last comparison, per axis",
	}, []string{"axis"})
)

func RecordFile(rule string) {
	FilesProcessed.WithLabelValues(rule).Inc()
}

func RecordWords(n int) {
	WordsWritten.Add(float64(n))
}

func RecordSkippedLine(file string) {
	LinesSkipped.WithLabelValues(file).Inc()
}

func RecordWrapped() {
	WordsWrapped.Inc()
}

func RecordClamped() {
	TokensClamped.Inc()
}

func RecordGuardSkip() {
	GuardSkips.Inc()
}

// RecordComparison publishes per-axis results; axes are labelled x, y, z.
func RecordComparison(maxDiff, rmse [3]float64, overall float64) {
	for i, axis := range []string{"x", "y", "z"} {
		CompareMaxDiff.WithLabelValues(axis).Set(maxDiff[i])
		CompareRMSE.WithLabelValues(axis).Set(rmse[i])
	}
	CompareRMSE.WithLabelValues("overall").Set(overall)
}

// WriteTextfile dumps the default registry in the node-exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
