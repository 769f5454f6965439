package scoring

import (
	"math"

	"docaudit/internal/features"
	"docaudit/internal/similarity"
)

// Input is everything the scorer needs for one sentence.
type Input struct {
	Features           features.Vector
	Similarity         similarity.Signal
	DocumentRepetition float64
	SentenceRepetition float64
	Uniformity         float64
}

type Result struct {
	AI         int    `json:"ai"`
	Plagiarism int    `json:"plagiarism"`
	Confidence int    `json:"confidence"`
	Source     string `json:"source,omitempty"`
}

type Scorer struct {
	weights    Weights
	disclosure float64
}

func NewScorer(w Weights, disclosure float64) *Scorer {
	return &Scorer{weights: w, disclosure: disclosure}
}

func (s *Scorer) Weights() Weights { return s.weights }

func (s *Scorer) Score(in Input) Result {
	plag, externalWon := s.PlagiarismPreScore(in)
	res := Result{
		AI:         ClampScore(s.AIPreScore(in)),
		Plagiarism: ClampScore(plag),
		Confidence: Confidence(s.weights, in),
	}
	if externalWon && in.Similarity.ExternalMax > s.disclosure && in.Similarity.ExternalSource != "" {
		res.Source = in.Similarity.ExternalSource
	}
	return res
}

// signals are the AI-leaning views of the features, each in [0,1].
type signals struct {
	lowDiversity  float64
	stopDeviation float64
	longWords     float64
	entropyDev    float64
	lowComplexity float64
	lowCoherence  float64
}

func (w Weights) signals(v features.Vector) signals {
	if v.WordCount == 0 {
		return signals{}
	}
	return signals{
		lowDiversity:  clamp01(1 - v.LexicalDiversity),
		stopDeviation: clamp01(math.Abs(v.StopwordRatio-w.StopwordMidpoint) / w.StopwordMidpoint),
		longWords:     clamp01((v.AvgWordLength - w.WordLengthFloor) / w.WordLengthSpan),
		entropyDev:    clamp01(math.Abs(v.CharEntropy-w.EntropyMidpoint) / w.EntropySpan),
		lowComplexity: clamp01(1 - v.SyntacticComplexity),
		lowCoherence:  clamp01(1 - v.SemanticCoherence),
	}
}

// AIPreScore is unbounded; every term moves the score in one direction only.
func (s *Scorer) AIPreScore(in Input) float64 {
	w := s.weights
	v := in.Features
	if v.WordCount == 0 {
		return 0
	}
	sig := w.signals(v)
	score := w.Bias +
		w.LexicalDiversity*sig.lowDiversity +
		w.StopwordDeviation*sig.stopDeviation +
		w.WordLength*sig.longWords +
		w.EntropyDeviation*sig.entropyDev +
		w.DocumentRepetition*clamp01(in.DocumentRepetition) +
		w.SentenceRepetition*clamp01(in.SentenceRepetition) +
		w.Uniformity*clamp01(in.Uniformity) +
		w.LowComplexity*sig.lowComplexity +
		w.LowCoherence*sig.lowCoherence +
		w.AIPattern*clampTo(v.AIPatternScore, w.AIPatternCap)
	score -= w.AcademicBonus * clamp01(v.AcademicPatternScore)
	score -= w.DigitPenalty * clamp01(v.DigitDensity/w.DigitSaturation)
	return score
}

// PlagiarismPreScore takes the worst case of the three signals. The bool
// reports whether the corpus match is the winning term.
func (s *Scorer) PlagiarismPreScore(in Input) (float64, bool) {
	w := s.weights
	internal := in.Similarity.InternalMax * w.Internal
	external := in.Similarity.ExternalMax * w.External
	pattern := clampTo(in.Features.PlagiarismPatternScore, w.PlagiarismPatternCap) * w.PlagiarismPattern
	best := math.Max(internal, math.Max(external, pattern))
	return best, external > 0 && external >= best
}

// Confidence is high when the normalized feature signals agree, i.e. when
// their variance is low. A sentence without words carries no evidence.
func Confidence(w Weights, in Input) int {
	if in.Features.WordCount == 0 {
		return 0
	}
	sig := w.signals(in.Features)
	values := []float64{
		sig.lowDiversity,
		sig.stopDeviation,
		sig.longWords,
		sig.lowComplexity,
		sig.lowCoherence,
		clamp01(in.Uniformity),
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	// 0.25 is the largest variance values in [0,1] can have.
	return ClampScore(100 * (1 - variance/0.25))
}

// ClampScore rounds to the nearest integer and clamps to [0,100].
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}

func clamp01(v float64) float64 {
	return clampTo(v, 1)
}

func clampTo(v, hi float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
