package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docaudit_analyses_total",
			Help: "Total number of documents analyzed",
		},
		[]string{"model_used"},
	)

	MLFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docaudit_ml_fallbacks_total",
			Help: "ML predictions that failed and fell back to heuristic scoring",
		},
		[]string{"error_type"},
	)

	DocumentAIScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docaudit_document_ai_score",
			Help:    "Document-level AI likelihood scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	DocumentPlagiarismScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docaudit_document_plagiarism_score",
			Help:    "Document-level plagiarism scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	SentencesPerDocument = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docaudit_sentences_per_document",
			Help:    "Number of sentences per analyzed document",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docaudit_analysis_duration_seconds",
			Help:    "Wall time of a single document analysis",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

var collectors = []prometheus.Collector{
	AnalysesTotal,
	MLFallbacks,
	DocumentAIScore,
	DocumentPlagiarismScore,
	SentencesPerDocument,
	AnalysisDuration,
}

// Register adds every collector to reg. Registering again on the same
// registry is allowed; any other conflict is returned.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var dup prometheus.AlreadyRegisteredError
			if errors.As(err, &dup) && dup.ExistingCollector == c {
				continue
			}
			return fmt.Errorf("register collector: %w", err)
		}
	}
	return nil
}

// WriteTextfile dumps g in the node-exporter textfile format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
