package features

import (
	"math"
	"strings"
	"unicode"
)

// Vector is the fixed feature set computed for one sentence.
type Vector struct {
	LexicalDiversity       float64 `json:"lexicalDiversity"`
	StopwordRatio          float64 `json:"stopwordRatio"`
	AvgWordLength          float64 `json:"avgWordLength"`
	CharEntropy            float64 `json:"charEntropy"`
	SyntacticComplexity    float64 `json:"syntacticComplexity"`
	SemanticCoherence      float64 `json:"semanticCoherence"`
	AcademicPatternScore   float64 `json:"academicPatternScore"`
	AIPatternScore         float64 `json:"aiPatternScore"`
	PlagiarismPatternScore float64 `json:"plagiarismPatternScore"`
	DigitDensity           float64 `json:"digitDensity"`
	WordCount              int     `json:"wordCount"`
}

// complexityScale maps (clause marks + 2*subordinators) per word onto [0,1].
const complexityScale = 2.5

// defaultCoherence is used when a sentence has no neighbours.
const defaultCoherence = 0.5

var subordinators = map[string]struct{}{
	"after": {}, "although": {}, "because": {}, "before": {}, "if": {}, "once": {},
	"since": {}, "though": {}, "unless": {}, "until": {}, "when": {}, "whenever": {},
	"where": {}, "whereas": {}, "wherever": {}, "whether": {}, "while": {},
}

// Extract computes the feature vector of sentence. left and right are the
// neighbouring sentences; an empty string means there is no neighbour.
// A sentence without words yields an all-zero vector.
func Extract(sentence, left, right string) Vector {
	words := Tokenize(sentence)
	if len(words) == 0 {
		return Vector{}
	}
	n := float64(len(words))
	unique := distinct(words)

	stop := 0
	chars := 0
	subs := 0
	for _, w := range words {
		if IsStopword(w) {
			stop++
		}
		if _, ok := subordinators[w]; ok {
			subs++
		}
		chars += len([]rune(w))
	}
	clauseMarks := strings.Count(sentence, ",") + strings.Count(sentence, ":") + strings.Count(sentence, ";")
	lowered := strings.ToLower(sentence)

	return Vector{
		LexicalDiversity:       float64(len(unique)) / n,
		StopwordRatio:          float64(stop) / n,
		AvgWordLength:          float64(chars) / n,
		CharEntropy:            CharEntropy(sentence),
		SyntacticComplexity:    clamp01(float64(clauseMarks+2*subs) / n * complexityScale),
		SemanticCoherence:      coherence(unique, left, right),
		AcademicPatternScore:   clamp01(AcademicPatterns.Score(lowered)),
		AIPatternScore:         AIPatterns.Score(lowered),
		PlagiarismPatternScore: PlagiarismPatterns.Score(lowered),
		DigitDensity:           DigitDensity(sentence),
		WordCount:              len(words),
	}
}

// CharEntropy is the Shannon entropy in bits per character of s.
func CharEntropy(s string) float64 {
	counts := map[rune]int{}
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// DigitDensity is the share of non-space characters that are digits.
func DigitDensity(s string) float64 {
	digits := 0
	visible := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		visible++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if visible == 0 {
		return 0
	}
	return float64(digits) / float64(visible)
}

func coherence(unique map[string]struct{}, neighbours ...string) float64 {
	sum := 0.0
	count := 0
	for _, nb := range neighbours {
		if strings.TrimSpace(nb) == "" {
			continue
		}
		count++
		other := distinct(Tokenize(nb))
		den := max(len(unique), len(other))
		if den == 0 {
			continue
		}
		shared := 0
		for w := range unique {
			if _, ok := other[w]; ok {
				shared++
			}
		}
		sum += float64(shared) / float64(den)
	}
	if count == 0 {
		return defaultCoherence
	}
	return sum / float64(count)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
