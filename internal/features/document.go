package features

import "math"

// DocumentStats holds document-wide repetition and sentence-length statistics.
type DocumentStats struct {
	BigramRepetition float64
	MeanLength       float64
	LengthSD         float64
	Sentences        int
}

// NewDocumentStats takes the token list of every sentence in document order.
func NewDocumentStats(sentences [][]string) DocumentStats {
	all := make([]string, 0, 64)
	lengths := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		all = append(all, s...)
		lengths = append(lengths, float64(len(s)))
	}
	mean, sd := meanStd(lengths)
	return DocumentStats{
		BigramRepetition: BigramRepetition(all),
		MeanLength:       mean,
		LengthSD:         sd,
		Sentences:        len(sentences),
	}
}

// BigramRepetition is the share of bigram occurrences that repeat an
// earlier bigram in the same token sequence.
func BigramRepetition(words []string) float64 {
	if len(words) < 2 {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	total := 0
	repeated := 0
	for i := 0; i+1 < len(words); i++ {
		total++
		key := words[i] + " " + words[i+1]
		if _, ok := seen[key]; ok {
			repeated++
			continue
		}
		seen[key] = struct{}{}
	}
	return float64(repeated) / float64(total)
}

// Uniformity is a burstiness proxy in [0,1]: 1 when a sentence length sits
// on the document mean, falling off with its z-score. A document whose
// sentences all share one length is fully uniform.
func (d DocumentStats) Uniformity(length int) float64 {
	if d.Sentences < 2 {
		return 0
	}
	if d.LengthSD == 0 {
		return 1
	}
	z := math.Abs(float64(length)-d.MeanLength) / d.LengthSD
	spread := clamp01(1 - d.LengthSD/math.Max(d.MeanLength, 1))
	return clamp01(math.Exp(-z) * spread)
}

func meanStd(values []float64) (mean, sd float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) == 1 {
		return mean, 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
