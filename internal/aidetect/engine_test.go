package aidetect

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docaudit/internal/highlight"
	"docaudit/internal/mlfusion"
)

type stubPredictor struct {
	pred     mlfusion.Prediction
	err      error
	initErr  error
	delay    time.Duration
	calls    int
	inits    int
	disposed int
}

func (s *stubPredictor) Name() string { return "stub" }

func (s *stubPredictor) Initialize(context.Context) error {
	s.inits++
	return s.initErr
}

func (s *stubPredictor) Dispose() error {
	s.disposed++
	return nil
}

func (s *stubPredictor) Predict(ctx context.Context, _ string) (mlfusion.Prediction, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return mlfusion.Prediction{}, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.pred, s.err
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

const essay = `Sleep shapes how the brain stores memories. During deep sleep, the hippocampus replays the day's events. Researchers at several labs have recorded this replay in rats! Does the same happen in people? Early imaging work suggests it does, although the signal is faint. Naps of twenty minutes seem to help with word lists. Longer naps bring grogginess, which can mask the benefit.`

func TestAnalyzeEmptyDocument(t *testing.T) {
	e := newEngine(t)
	for _, text := range []string{"", "   \n\t "} {
		r := e.Analyze(context.Background(), Input{DocumentID: "empty", Text: text})
		if r.AIScore != 0 || r.Plagiarism != 0 || r.Confidence != 0 {
			t.Fatalf("expected zero scores for %q, got %d/%d/%d", text, r.AIScore, r.Plagiarism, r.Confidence)
		}
		if r.Sentences == nil || len(r.Sentences) != 0 {
			t.Fatalf("expected empty, non-nil sentence list, got %#v", r.Sentences)
		}
		if r.Analysis.ModelUsed != ModelHeuristic {
			t.Fatalf("unexpected model label %q", r.Analysis.ModelUsed)
		}
		if r.RunID == "" {
			t.Fatalf("expected run id")
		}
	}
}

func TestAnalyzePreservesSentenceOrder(t *testing.T) {
	e := newEngine(t)
	r := e.Analyze(context.Background(), Input{DocumentID: "essay", Text: essay})
	if len(r.Sentences) != 7 {
		t.Fatalf("expected 7 sentences, got %d", len(r.Sentences))
	}
	last := -1
	for i, s := range r.Sentences {
		if s.Index != i {
			t.Fatalf("sentence %d has index %d", i, s.Index)
		}
		pos := strings.Index(essay, s.Sentence)
		if pos < 0 {
			t.Fatalf("sentence %q not found in source", s.Sentence)
		}
		if pos <= last {
			t.Fatalf("sentence %d out of order", i)
		}
		last = pos
	}
	if r.WordCount == 0 {
		t.Fatalf("expected word count")
	}
}

func TestAnalyzeScoresStayInRange(t *testing.T) {
	e := newEngine(t)
	texts := []string{
		essay,
		"A.",
		"1234 5678 9012. 3456 7890!",
		"Furthermore, it is important to note that we must delve into the rich tapestry of innovation. Moreover, in today's fast-paced world, we leverage seamless synergy. In conclusion, this plays a pivotal role.",
		strings.Repeat("word ", 500),
	}
	for _, text := range texts {
		r := e.Analyze(context.Background(), Input{Text: text})
		for _, v := range []int{r.AIScore, r.Plagiarism, r.Confidence} {
			if v < 0 || v > 100 {
				t.Fatalf("document score %d out of range for %q", v, text)
			}
		}
		for _, s := range r.Sentences {
			for _, v := range []int{s.AI, s.Plagiarism, s.Confidence} {
				if v < 0 || v > 100 {
					t.Fatalf("sentence score %d out of range: %+v", v, s)
				}
			}
		}
	}
}

func TestAnalyzeExactDuplicateSentences(t *testing.T) {
	e := newEngine(t)
	r := e.Analyze(context.Background(), Input{Text: "The cat sat on the mat. The cat sat on the mat."})
	if len(r.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(r.Sentences))
	}
	for _, s := range r.Sentences {
		if s.InternalMax < 0.99 {
			t.Fatalf("expected internalMax >= 0.99, got %.3f", s.InternalMax)
		}
	}
	if r.Plagiarism < 90 {
		t.Fatalf("expected near-100 plagiarism, got %d", r.Plagiarism)
	}
	if !contains(r.Analysis.Flags, FlagInternalDuplication) {
		t.Fatalf("expected internal duplication flag, got %v", r.Analysis.Flags)
	}
	groups := e.Highlights(r)
	if len(groups[1].Terms) != 1 || groups[1].Terms[0] != "The cat sat on the mat." {
		t.Fatalf("expected one deduplicated plagiarism term, got %v", groups[1].Terms)
	}
}

func TestAnalyzeCorpusSource(t *testing.T) {
	e := newEngine(t)
	corpus := []CorpusDocument{
		{ID: "unrelated", Text: "Tides follow the moon. Salt water freezes at a lower temperature."},
		{ID: "sleep-review", Text: "Reviews agree on little. During deep sleep, the hippocampus replays the day's events. Replay is hard to measure."},
	}
	r := e.Analyze(context.Background(), Input{Text: essay, Corpus: corpus})
	found := false
	for _, s := range r.Sentences {
		if s.Source == "" {
			continue
		}
		if s.Source != "sleep-review" {
			t.Fatalf("unexpected source %q", s.Source)
		}
		if s.ExternalMax <= DefaultConfig().DisclosureThreshold {
			t.Fatalf("source disclosed below threshold: %.3f", s.ExternalMax)
		}
		found = true
	}
	if !found {
		t.Fatalf("expected a sentence attributed to the corpus")
	}
	if !contains(r.Analysis.Flags, FlagCorpusOverlap) {
		t.Fatalf("expected corpus overlap flag, got %v", r.Analysis.Flags)
	}
}

func TestAnalyzeEmptyCorpusNeverDisclosesSource(t *testing.T) {
	e := newEngine(t)
	r := e.Analyze(context.Background(), Input{Text: essay + " " + essay})
	for _, s := range r.Sentences {
		if s.Source != "" || s.ExternalMax != 0 {
			t.Fatalf("unexpected source data without corpus: %+v", s)
		}
	}
}

func TestAnalyzeFailingPredictorFallsBack(t *testing.T) {
	heuristic := newEngine(t).Analyze(context.Background(), Input{Text: essay})

	stub := &stubPredictor{err: mlfusion.ErrUnavailable}
	e := newEngine(t, WithPredictor(stub))
	r := e.Analyze(context.Background(), Input{Text: essay})
	if stub.calls != 1 {
		t.Fatalf("expected one predictor call, got %d", stub.calls)
	}
	if r.Analysis.ModelUsed != ModelHeuristic {
		t.Fatalf("expected heuristic model label, got %q", r.Analysis.ModelUsed)
	}
	if r.AIScore != heuristic.AIScore || r.Plagiarism != heuristic.Plagiarism || r.Confidence != heuristic.Confidence {
		t.Fatalf("fallback scores differ from heuristic scores")
	}
	if len(r.Errors) != 1 || r.Errors[0].Stage != "ml_fusion" || r.Errors[0].Type != "unavailable" {
		t.Fatalf("expected one ml_fusion degradation, got %+v", r.Errors)
	}
}

func TestAnalyzePredictorTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MLTimeout = 10 * time.Millisecond
	e, err := New(cfg, WithPredictor(&stubPredictor{delay: time.Second}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	r := e.Analyze(context.Background(), Input{Text: essay})
	if r.Analysis.ModelUsed != ModelHeuristic {
		t.Fatalf("expected heuristic model label, got %q", r.Analysis.ModelUsed)
	}
	if len(r.Errors) != 1 || r.Errors[0].Type != "timeout" {
		t.Fatalf("expected timeout degradation, got %+v", r.Errors)
	}
}

func TestAnalyzeMalformedPredictionFallsBack(t *testing.T) {
	e := newEngine(t, WithPredictor(&stubPredictor{pred: mlfusion.Prediction{AIScore: 250}}))
	r := e.Analyze(context.Background(), Input{Text: essay})
	if r.Analysis.ModelUsed != ModelHeuristic {
		t.Fatalf("expected heuristic model label, got %q", r.Analysis.ModelUsed)
	}
	if len(r.Errors) != 1 || r.Errors[0].Type != "malformed" || r.Errors[0].Retryable {
		t.Fatalf("expected non-retryable malformed entry, got %+v", r.Errors)
	}
}

func TestAnalyzeFusesPrediction(t *testing.T) {
	heuristic := newEngine(t).Analyze(context.Background(), Input{Text: essay})
	stub := &stubPredictor{pred: mlfusion.Prediction{AIScore: 100, PlagiarismScore: 100, Confidence: 100}}
	r := newEngine(t, WithPredictor(stub)).Analyze(context.Background(), Input{Text: essay})

	if r.Analysis.ModelUsed != "heuristic+stub" {
		t.Fatalf("unexpected model label %q", r.Analysis.ModelUsed)
	}
	if r.AIScore < heuristic.AIScore || r.AIScore > 100 {
		t.Fatalf("fused ai score %d not between heuristic %d and 100", r.AIScore, heuristic.AIScore)
	}
	for i := range r.Sentences {
		if r.Sentences[i].AI != heuristic.Sentences[i].AI {
			t.Fatalf("ml must not change sentence scores")
		}
	}
}

func TestEngineOwnsPredictorLifecycle(t *testing.T) {
	stub := &stubPredictor{pred: mlfusion.Prediction{AIScore: 10, PlagiarismScore: 10, Confidence: 10}}
	e := newEngine(t, WithPredictor(stub))
	if stub.inits != 1 {
		t.Fatalf("expected New to initialize the predictor once, got %d", stub.inits)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if stub.disposed != 1 {
		t.Fatalf("expected Close to dispose the predictor once, got %d", stub.disposed)
	}
}

func TestPredictorThatFailsToInitializeIsDropped(t *testing.T) {
	stub := &stubPredictor{initErr: errors.New("no model")}
	e := newEngine(t, WithPredictor(stub))
	r := e.Analyze(context.Background(), Input{Text: essay})
	if stub.calls != 0 {
		t.Fatalf("expected no predictor calls, got %d", stub.calls)
	}
	if r.Analysis.ModelUsed != ModelHeuristic {
		t.Fatalf("expected heuristic model label, got %q", r.Analysis.ModelUsed)
	}
	if len(r.Errors) != 0 {
		t.Fatalf("expected no degradation entries, got %+v", r.Errors)
	}
	if stub.disposed != 1 {
		t.Fatalf("expected failed predictor to be disposed, got %d", stub.disposed)
	}
	if err := e.Close(); err != nil || stub.disposed != 1 {
		t.Fatalf("expected Close to leave a dropped predictor alone: err=%v disposed=%d", err, stub.disposed)
	}
}

func TestAnalyzeMarksDegradedFusionSpan(t *testing.T) {
	r := newEngine(t, WithPredictor(&stubPredictor{err: mlfusion.ErrUnavailable})).Analyze(context.Background(), Input{Text: essay})
	last := r.Traces[len(r.Traces)-1]
	if last.Name != "ml_fusion" || last.Status != "degraded" {
		t.Fatalf("expected degraded ml_fusion trace, got %+v", last)
	}
	if len(r.Errors) != 1 || r.Errors[0].Type != "unavailable" {
		t.Fatalf("expected exactly one classified entry, got %+v", r.Errors)
	}

	ok := newEngine(t, WithPredictor(&stubPredictor{pred: mlfusion.Prediction{AIScore: 50, PlagiarismScore: 0, Confidence: 50}})).Analyze(context.Background(), Input{Text: essay})
	if last := ok.Traces[len(ok.Traces)-1]; last.Name != "ml_fusion" || last.Status != "ok" {
		t.Fatalf("expected ok ml_fusion trace, got %+v", last)
	}
}

func TestAnalyzeSingleCopiedSentenceDominatesDocument(t *testing.T) {
	copied := "Glaciers carve wide valleys as they grind slowly downhill over centuries."
	text := strings.Join([]string{
		"Our survey began at the northern trailhead in early June.",
		"The team carried two drills and a small weather station.",
		"Snow still covered the upper meadows when we arrived.",
		"We logged temperatures every hour for the first week.",
		copied,
		"Meltwater streams changed course almost every afternoon.",
		"A rockfall closed the eastern path for three days.",
		"Samples from the moraine were packed in labelled tins.",
		"By July the lake had risen nearly half a metre.",
		"The final report will go to the park office next spring.",
	}, " ")
	corpus := []CorpusDocument{{ID: "geology-primer", Text: "Ice moves. " + copied + " Rivers follow later."}}

	e := newEngine(t)
	r := e.Analyze(context.Background(), Input{Text: text, Corpus: corpus})
	if len(r.Sentences) != 10 {
		t.Fatalf("expected 10 sentences, got %d", len(r.Sentences))
	}
	if r.Sentences[4].Source != "geology-primer" {
		t.Fatalf("expected copied sentence attributed to the corpus, got %+v", r.Sentences[4])
	}
	strict := DefaultConfig().Highlight.Plagiarism.Strict
	if r.Plagiarism < strict {
		t.Fatalf("expected document plagiarism >= %d, got %d", strict, r.Plagiarism)
	}
	groups := e.Highlights(r)
	if groups[1].ClassName != highlight.ClassPlagiarism || len(groups[1].Terms) == 0 {
		t.Fatalf("expected plagiarism highlights, got %+v", groups[1])
	}
	if groups[1].Terms[0] != copied {
		t.Fatalf("expected copied sentence highlighted first, got %v", groups[1].Terms)
	}
}

func TestAnalyzeRecordsTraces(t *testing.T) {
	r := newEngine(t).Analyze(context.Background(), Input{Text: essay})
	want := []string{"segment_sentences", "similarity_index", "score_sentences", "aggregate_document"}
	if len(r.Traces) != len(want) {
		t.Fatalf("expected %d traces, got %+v", len(want), r.Traces)
	}
	for i, name := range want {
		if r.Traces[i].Name != name || r.Traces[i].Status != "ok" {
			t.Fatalf("unexpected trace %d: %+v", i, r.Traces[i])
		}
	}
	if r.WeightsVersion == "" {
		t.Fatalf("expected weights version")
	}
}

func TestAnalyzeDiscourseMarkersFlag(t *testing.T) {
	text := "Furthermore, the plan is sound. Moreover, the budget is fixed. Additionally, the team is ready. In conclusion, we proceed."
	r := newEngine(t).Analyze(context.Background(), Input{Text: text})
	if !contains(r.Analysis.Flags, FlagDiscourseMarkers) {
		t.Fatalf("expected discourse marker flag, got %v", r.Analysis.Flags)
	}
	if len(r.Analysis.Recommendations) != len(r.Analysis.Flags) {
		t.Fatalf("expected one recommendation per flag")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"ngram":      func(c *Config) { c.NGramSize = 3 },
		"disclosure": func(c *Config) { c.DisclosureThreshold = 1.5 },
		"percentile": func(c *Config) { c.PlagiarismPercentile = 0 },
		"timeout":    func(c *Config) { c.MLTimeout = 0 },
		"fusion":     func(c *Config) { c.Fusion = mlfusion.FusionWeights{Heuristic: 0.2, ML: 0.8} },
		"weights":    func(c *Config) { c.Weights.Internal = -1 },
		"highlight":  func(c *Config) { c.Highlight = highlight.Thresholds{} },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
