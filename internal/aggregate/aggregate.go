package aggregate

import (
	"fmt"
	"math"
	"sort"
)

const DefaultPercentile = 90

// DominantPlagiarism is the sentence plagiarism score at which a single
// sentence sets the document score regardless of the percentile.
const DominantPlagiarism = 80

// Scores are the document-level figures rolled up from sentence scores.
type Scores struct {
	AI         int `json:"aiScore"`
	Plagiarism int `json:"plagiarism"`
	Confidence int `json:"confidence"`
}

type Sentence struct {
	AI         int
	Plagiarism int
	Confidence int
}

// Document averages AI and confidence but takes a high percentile of
// plagiarism: one strongly copied passage should carry the document, one
// strongly AI-like passage should not. Any sentence at or above
// DominantPlagiarism lifts the document plagiarism to its own score.
func Document(sentences []Sentence, percentile float64) Scores {
	if len(sentences) == 0 {
		return Scores{}
	}
	ai := make([]float64, len(sentences))
	plag := make([]float64, len(sentences))
	conf := make([]float64, len(sentences))
	for i, s := range sentences {
		ai[i] = float64(s.AI)
		plag[i] = float64(s.Plagiarism)
		conf[i] = float64(s.Confidence)
	}
	plagiarism := Percentile(plag, percentile)
	for _, v := range plag {
		if v >= DominantPlagiarism && v > plagiarism {
			plagiarism = v
		}
	}
	return Scores{
		AI:         clampRound(Mean(ai)),
		Plagiarism: clampRound(plagiarism),
		Confidence: clampRound(Mean(conf)),
	}
}

func ValidatePercentile(p float64) error {
	if p <= 0 || p > 100 || math.IsNaN(p) {
		return fmt.Errorf("percentile %g outside (0,100]", p)
	}
	return nil
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Percentile picks the sorted value at 0-based index floor(p/100*n), clamped
// to the last element. For p=90 the maximum is returned up to n=10.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p / 100 * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func clampRound(v float64) int {
	r := math.Round(v)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	if r > 100 {
		return 100
	}
	return int(r)
}
