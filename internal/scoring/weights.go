package scoring

import (
	"errors"
	"fmt"
)

var ErrInvalidWeights = errors.New("invalid weight table")

// Weights is the versioned heuristic weight table. AI terms are expressed in
// score points for a fully saturated signal; the plagiarism multipliers map a
// similarity in [0,1] onto the 0-100 scale.
type Weights struct {
	Version string  `mapstructure:"version" json:"version"`
	Bias    float64 `mapstructure:"bias" json:"bias"`

	LexicalDiversity   float64 `mapstructure:"lexical_diversity" json:"lexicalDiversity"`
	StopwordDeviation  float64 `mapstructure:"stopword_deviation" json:"stopwordDeviation"`
	WordLength         float64 `mapstructure:"word_length" json:"wordLength"`
	EntropyDeviation   float64 `mapstructure:"entropy_deviation" json:"entropyDeviation"`
	DocumentRepetition float64 `mapstructure:"document_repetition" json:"documentRepetition"`
	SentenceRepetition float64 `mapstructure:"sentence_repetition" json:"sentenceRepetition"`
	Uniformity         float64 `mapstructure:"uniformity" json:"uniformity"`
	LowComplexity      float64 `mapstructure:"low_complexity" json:"lowComplexity"`
	LowCoherence       float64 `mapstructure:"low_coherence" json:"lowCoherence"`
	AIPattern          float64 `mapstructure:"ai_pattern" json:"aiPattern"`
	AcademicBonus      float64 `mapstructure:"academic_bonus" json:"academicBonus"`
	DigitPenalty       float64 `mapstructure:"digit_penalty" json:"digitPenalty"`

	StopwordMidpoint float64 `mapstructure:"stopword_midpoint" json:"stopwordMidpoint"`
	EntropyMidpoint  float64 `mapstructure:"entropy_midpoint" json:"entropyMidpoint"`
	EntropySpan      float64 `mapstructure:"entropy_span" json:"entropySpan"`
	WordLengthFloor  float64 `mapstructure:"word_length_floor" json:"wordLengthFloor"`
	WordLengthSpan   float64 `mapstructure:"word_length_span" json:"wordLengthSpan"`
	DigitSaturation  float64 `mapstructure:"digit_saturation" json:"digitSaturation"`

	AIPatternCap         float64 `mapstructure:"ai_pattern_cap" json:"aiPatternCap"`
	PlagiarismPatternCap float64 `mapstructure:"plagiarism_pattern_cap" json:"plagiarismPatternCap"`

	Internal          float64 `mapstructure:"internal" json:"internal"`
	External          float64 `mapstructure:"external" json:"external"`
	PlagiarismPattern float64 `mapstructure:"plagiarism_pattern" json:"plagiarismPattern"`
}

func DefaultWeights() Weights {
	return Weights{
		Version: "2026.1",
		Bias:    -30,

		LexicalDiversity:   45,
		StopwordDeviation:  12,
		WordLength:         14,
		EntropyDeviation:   8,
		DocumentRepetition: 30,
		SentenceRepetition: 20,
		Uniformity:         16,
		LowComplexity:      10,
		LowCoherence:       6,
		AIPattern:          28,
		AcademicBonus:      18,
		DigitPenalty:       25,

		StopwordMidpoint: 0.45,
		EntropyMidpoint:  3.5,
		EntropySpan:      1.5,
		WordLengthFloor:  4.2,
		WordLengthSpan:   3.5,
		DigitSaturation:  0.25,

		AIPatternCap:         2.0,
		PlagiarismPatternCap: 1.5,

		Internal:          100,
		External:          110,
		PlagiarismPattern: 40,
	}
}

func (w Weights) Validate() error {
	nonNegative := map[string]float64{
		"lexical_diversity":      w.LexicalDiversity,
		"stopword_deviation":     w.StopwordDeviation,
		"word_length":            w.WordLength,
		"entropy_deviation":      w.EntropyDeviation,
		"document_repetition":    w.DocumentRepetition,
		"sentence_repetition":    w.SentenceRepetition,
		"uniformity":             w.Uniformity,
		"low_complexity":         w.LowComplexity,
		"low_coherence":          w.LowCoherence,
		"ai_pattern":             w.AIPattern,
		"academic_bonus":         w.AcademicBonus,
		"digit_penalty":          w.DigitPenalty,
		"ai_pattern_cap":         w.AIPatternCap,
		"plagiarism_pattern_cap": w.PlagiarismPatternCap,
		"internal":               w.Internal,
		"external":               w.External,
		"plagiarism_pattern":     w.PlagiarismPattern,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative (got %g)", ErrInvalidWeights, name, v)
		}
	}
	positive := map[string]float64{
		"stopword_midpoint": w.StopwordMidpoint,
		"entropy_midpoint":  w.EntropyMidpoint,
		"entropy_span":      w.EntropySpan,
		"word_length_span":  w.WordLengthSpan,
		"digit_saturation":  w.DigitSaturation,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive (got %g)", ErrInvalidWeights, name, v)
		}
	}
	if w.StopwordMidpoint >= 1 {
		return fmt.Errorf("%w: stopword_midpoint must be below 1", ErrInvalidWeights)
	}
	return nil
}
