package scoring

import (
	"testing"

	"docaudit/internal/features"
	"docaudit/internal/similarity"
)

func baseInput() Input {
	return Input{
		Features:           features.Extract("Moreover, the system provides a comprehensive overview of the data.", "", ""),
		DocumentRepetition: 0.1,
		SentenceRepetition: 0.0,
		Uniformity:         0.4,
	}
}

func TestAIPreScoreMonotonicInRepetition(t *testing.T) {
	s := NewScorer(DefaultWeights(), 0.3)
	in := baseInput()
	prev := s.AIPreScore(in)
	for _, rep := range []float64{0.2, 0.4, 0.8, 1.0} {
		in.DocumentRepetition = rep
		in.SentenceRepetition = rep
		cur := s.AIPreScore(in)
		if cur < prev {
			t.Fatalf("repetition %.1f decreased score: %.2f < %.2f", rep, cur, prev)
		}
		prev = cur
	}
}

func TestAIPreScoreAcademicAndDigitsReduce(t *testing.T) {
	s := NewScorer(DefaultWeights(), 0.3)
	in := baseInput()
	base := s.AIPreScore(in)

	academic := in
	academic.Features.AcademicPatternScore = 1
	if got := s.AIPreScore(academic); got >= base {
		t.Fatalf("expected academic bonus to reduce score: %.2f >= %.2f", got, base)
	}

	digits := in
	digits.Features.DigitDensity = 0.5
	if got := s.AIPreScore(digits); got >= base {
		t.Fatalf("expected digit density to reduce score: %.2f >= %.2f", got, base)
	}
}

func TestAIPreScoreMonotonicInPatterns(t *testing.T) {
	s := NewScorer(DefaultWeights(), 0.3)
	in := baseInput()
	in.Features.AIPatternScore = 0
	low := s.AIPreScore(in)
	in.Features.AIPatternScore = 1
	high := s.AIPreScore(in)
	in.Features.AIPatternScore = 50
	capped := s.AIPreScore(in)
	if !(low < high && high <= capped) {
		t.Fatalf("expected monotonic pattern contribution: %.2f %.2f %.2f", low, high, capped)
	}
}

func TestPlagiarismIsWorstCase(t *testing.T) {
	s := NewScorer(DefaultWeights(), 0.3)
	in := baseInput()
	in.Similarity = similarity.Signal{InternalMax: 0.9, ExternalMax: 0.1, ExternalSource: "doc-1"}
	res := s.Score(in)
	if res.Plagiarism != 90 {
		t.Fatalf("expected internal duplicate to dominate with 90, got %d", res.Plagiarism)
	}
	if res.Source != "" {
		t.Fatalf("expected no source when internal term wins, got %q", res.Source)
	}
}

func TestSourceDisclosedOnlyAboveThreshold(t *testing.T) {
	s := NewScorer(DefaultWeights(), 0.3)
	in := baseInput()
	in.Similarity = similarity.Signal{ExternalMax: 0.5, ExternalSource: "doc-7"}
	if res := s.Score(in); res.Source != "doc-7" || res.Plagiarism != 55 {
		t.Fatalf("expected doc-7 at 55, got %+v", res)
	}
	in.Similarity = similarity.Signal{ExternalMax: 0.2, ExternalSource: "doc-7"}
	if res := s.Score(in); res.Source != "" {
		t.Fatalf("expected no source under threshold, got %q", res.Source)
	}
}

func TestScoresClamped(t *testing.T) {
	w := DefaultWeights()
	w.Bias = 500
	s := NewScorer(w, 0.3)
	in := baseInput()
	in.Similarity = similarity.Signal{InternalMax: 1, ExternalMax: 1, ExternalSource: "x"}
	res := s.Score(in)
	if res.AI != 100 || res.Plagiarism != 100 {
		t.Fatalf("expected clamped scores, got %+v", res)
	}
	if res.Confidence < 0 || res.Confidence > 100 {
		t.Fatalf("confidence out of range: %d", res.Confidence)
	}
}

func TestZeroWordSentence(t *testing.T) {
	s := NewScorer(DefaultWeights(), 0.3)
	res := s.Score(Input{})
	if res.AI != 0 || res.Plagiarism != 0 || res.Confidence != 0 {
		t.Fatalf("expected zero scores, got %+v", res)
	}
}

func TestClampScore(t *testing.T) {
	cases := map[float64]int{-4: 0, 49.5: 50, 49.4: 49, 130: 100}
	for in, want := range cases {
		if got := ClampScore(in); got != want {
			t.Fatalf("ClampScore(%.1f) = %d, want %d", in, got, want)
		}
	}
}

func TestValidateWeights(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	w := DefaultWeights()
	w.External = -1
	if err := w.Validate(); err == nil {
		t.Fatal("expected negative weight to be rejected")
	}
	w = DefaultWeights()
	w.EntropySpan = 0
	if err := w.Validate(); err == nil {
		t.Fatal("expected zero span to be rejected")
	}
}
