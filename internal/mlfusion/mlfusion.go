package mlfusion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"docaudit/internal/aggregate"
)

var (
	ErrUnavailable         = errors.New("ml backend unavailable")
	ErrMalformedPrediction = errors.New("malformed ml prediction")
	ErrNotInitialized      = errors.New("ml predictor not initialized")
)

// Prediction is the document-level output of an external model.
type Prediction struct {
	AIScore         float64            `json:"aiScore"`
	PlagiarismScore float64            `json:"plagiarismScore"`
	Confidence      float64            `json:"confidence"`
	Features        map[string]float64 `json:"features,omitempty"`
}

// Predictor is an external model with an explicit lifecycle. Implementations
// must be safe for concurrent Predict calls once initialized.
type Predictor interface {
	Name() string
	Initialize(ctx context.Context) error
	Predict(ctx context.Context, text string) (Prediction, error)
	Dispose() error
}

func ValidatePrediction(p Prediction) error {
	fields := map[string]float64{
		"aiScore":         p.AIScore,
		"plagiarismScore": p.PlagiarismScore,
		"confidence":      p.Confidence,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return fmt.Errorf("%w: %s=%v outside [0,100]", ErrMalformedPrediction, name, v)
		}
	}
	return nil
}

// FusionWeights blend document scores. The heuristic side is always
// available, so it never weighs less than the model.
type FusionWeights struct {
	Heuristic float64 `mapstructure:"heuristic" json:"heuristic"`
	ML        float64 `mapstructure:"ml" json:"ml"`
}

func DefaultFusionWeights() FusionWeights {
	return FusionWeights{Heuristic: 0.6, ML: 0.4}
}

func (w FusionWeights) Validate() error {
	if w.Heuristic < 0 || w.ML < 0 {
		return fmt.Errorf("fusion weights must not be negative")
	}
	if w.Heuristic < w.ML {
		return fmt.Errorf("heuristic fusion weight %.2f below ml weight %.2f", w.Heuristic, w.ML)
	}
	if math.Abs(w.Heuristic+w.ML-1) > 1e-6 {
		return fmt.Errorf("fusion weights must sum to 1 (got %.3f)", w.Heuristic+w.ML)
	}
	return nil
}

// Fuse blends document-level scores only; sentence scores are never touched.
func Fuse(h aggregate.Scores, p Prediction, w FusionWeights) aggregate.Scores {
	blend := func(heuristic int, ml float64) int {
		v := math.Round(w.Heuristic*float64(heuristic) + w.ML*ml)
		if v < 0 {
			return 0
		}
		if v > 100 {
			return 100
		}
		return int(v)
	}
	return aggregate.Scores{
		AI:         blend(h.AI, p.AIScore),
		Plagiarism: blend(h.Plagiarism, p.PlagiarismScore),
		Confidence: blend(h.Confidence, p.Confidence),
	}
}

// ClassifyError maps a predictor failure onto a short error type.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMalformedPrediction):
		return "malformed"
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrNotInitialized):
		return "unavailable"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "timeout"
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "unavailable"), strings.Contains(msg, "circuit breaker"):
		return "unavailable"
	default:
		return "exception"
	}
}
