package aidetect

import (
	"math"

	"docaudit/internal/features"
)

const (
	FlagUniformLength       = "uniform_sentence_length"
	FlagHighRepetition      = "high_repetition"
	FlagDiscourseMarkers    = "ai_discourse_markers"
	FlagInternalDuplication = "internal_duplication"
	FlagCorpusOverlap       = "corpus_overlap"
	FlagCitationPhrasing    = "citation_phrasing"
)

var recommendations = map[string]string{
	FlagUniformLength:       "Vary sentence length; evenly sized sentences read as generated text.",
	FlagHighRepetition:      "Reduce repeated word pairs across the document.",
	FlagDiscourseMarkers:    "Replace stock transitions such as \"furthermore\" and \"in conclusion\" with specific links between ideas.",
	FlagInternalDuplication: "Remove or rewrite sentences that repeat earlier sentences of the document.",
	FlagCorpusOverlap:       "Quote and cite passages that match reference documents, or rewrite them.",
	FlagCitationPhrasing:    "Check that phrases announcing a source are followed by a proper citation.",
}

const (
	styleAIThreshold    = 70
	styleMixedThreshold = 40

	uniformCV            = 0.2
	repetitionThreshold  = 0.2
	discourseShare       = 0.2
	duplicationThreshold = 0.8
)

// summarize derives the style label, flags and recommendations. The model
// label already on a is kept.
func summarize(a Analysis, aiScore int, sentences []SentenceScore, stats features.DocumentStats, vectors []features.Vector) Analysis {
	out := Analysis{
		Style:           StyleHuman,
		Flags:           []string{},
		Recommendations: []string{},
		ModelUsed:       a.ModelUsed,
	}
	switch {
	case aiScore >= styleAIThreshold:
		out.Style = StyleAI
	case aiScore >= styleMixedThreshold:
		out.Style = StyleMixed
	}
	if len(sentences) == 0 {
		return out
	}

	flag := func(name string) {
		out.Flags = append(out.Flags, name)
		out.Recommendations = append(out.Recommendations, recommendations[name])
	}

	if stats.Sentences >= 3 && stats.LengthSD/math.Max(stats.MeanLength, 1) < uniformCV {
		flag(FlagUniformLength)
	}
	if stats.BigramRepetition >= repetitionThreshold {
		flag(FlagHighRepetition)
	}
	markers, citations := 0, 0
	for _, v := range vectors {
		if v.AIPatternScore > 0 {
			markers++
		}
		if v.PlagiarismPatternScore > 0 {
			citations++
		}
	}
	if markers > 0 && float64(markers)/float64(len(vectors)) >= discourseShare {
		flag(FlagDiscourseMarkers)
	}
	duplicated, overlapping := false, false
	for _, s := range sentences {
		if s.InternalMax >= duplicationThreshold {
			duplicated = true
		}
		if s.Source != "" {
			overlapping = true
		}
	}
	if duplicated {
		flag(FlagInternalDuplication)
	}
	if overlapping {
		flag(FlagCorpusOverlap)
	}
	if citations > 0 {
		flag(FlagCitationPhrasing)
	}
	return out
}
