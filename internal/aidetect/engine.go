package aidetect

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"docaudit/internal/aggregate"
	"docaudit/internal/features"
	"docaudit/internal/highlight"
	"docaudit/internal/metrics"
	"docaudit/internal/mlfusion"
	"docaudit/internal/scoring"
	"docaudit/internal/segment"
	"docaudit/internal/similarity"
)

// Engine analyzes documents. It holds no per-document state, so one Engine
// may serve concurrent Analyze calls.
type Engine struct {
	cfg       Config
	scorer    *scoring.Scorer
	predictor mlfusion.Predictor
	logger    *zap.Logger
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPredictor hands an ML predictor to the engine, which owns its whole
// lifecycle: New initializes it and Close disposes it.
func WithPredictor(p mlfusion.Predictor) Option {
	return func(e *Engine) { e.predictor = p }
}

// New validates cfg and initializes the predictor, if any. A predictor that
// fails to initialize is disposed and dropped; the engine then scores with
// heuristics only.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		scorer: scoring.NewScorer(cfg.Weights, cfg.DisclosureThreshold),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.predictor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MLTimeout)
		defer cancel()
		if err := e.predictor.Initialize(ctx); err != nil {
			e.logger.Warn("ml predictor unavailable, using heuristic scoring",
				zap.String("predictor", e.predictor.Name()),
				zap.Error(err),
			)
			_ = e.predictor.Dispose()
			e.predictor = nil
		}
	}
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Close() error {
	if e.predictor == nil {
		return nil
	}
	if err := e.predictor.Dispose(); err != nil {
		return fmt.Errorf("dispose predictor: %w", err)
	}
	return nil
}

// Analyze never fails: bad input yields an empty report and ML trouble
// degrades to heuristic scoring, both recorded on Report.Errors.
func (e *Engine) Analyze(ctx context.Context, in Input) Report {
	startAll := time.Now()
	ctx, root := tracer.Start(ctx, "analyze")
	defer root.End()

	report := Report{
		RunID:          uuid.NewString(),
		DocumentID:     in.DocumentID,
		Sentences:      []SentenceScore{},
		WeightsVersion: e.cfg.Weights.Version,
		Analysis: Analysis{
			Flags:           []string{},
			Recommendations: []string{},
			ModelUsed:       ModelHeuristic,
		},
		Errors: []ErrorEntry{},
		Traces: []SpanTrace{},
	}

	var sentences []segment.Sentence
	tokens := [][]string{}
	e.withSpan(ctx, &report, "segment_sentences", func(context.Context) error {
		sentences = segment.Segment(in.Text)
		tokens = make([][]string, len(sentences))
		for i, s := range sentences {
			tokens[i] = features.Tokenize(s.Text)
			report.WordCount += len(tokens[i])
		}
		return nil
	})
	root.SetAttributes(
		attribute.String("document.id", in.DocumentID),
		attribute.Int("document.sentences", len(sentences)),
	)

	e.logger.Info("document analysis started",
		zap.String("run_id", report.RunID),
		zap.String("document_id", in.DocumentID),
		zap.Int("sentences", len(sentences)),
		zap.Int("corpus_documents", len(in.Corpus)),
	)

	if len(sentences) == 0 {
		report.Analysis = summarize(report.Analysis, 0, nil, features.DocumentStats{}, nil)
		e.finish(&report, startAll)
		return report
	}

	var idx *similarity.Index
	e.withSpan(ctx, &report, "similarity_index", func(context.Context) error {
		var err error
		idx, err = similarity.NewIndex(tokens, corpusDocuments(in.Corpus), e.cfg.NGramSize)
		return err
	})
	if idx == nil {
		e.finish(&report, startAll)
		return report
	}

	stats := features.NewDocumentStats(tokens)
	vectors := make([]features.Vector, len(sentences))
	rollup := make([]aggregate.Sentence, len(sentences))
	e.withSpan(ctx, &report, "score_sentences", func(context.Context) error {
		for i, s := range sentences {
			left, right := "", ""
			if i > 0 {
				left = sentences[i-1].Text
			}
			if i+1 < len(sentences) {
				right = sentences[i+1].Text
			}
			vec := features.Extract(s.Text, left, right)
			sig := idx.Signal(i)
			res := e.scorer.Score(scoring.Input{
				Features:           vec,
				Similarity:         sig,
				DocumentRepetition: stats.BigramRepetition,
				SentenceRepetition: features.BigramRepetition(tokens[i]),
				Uniformity:         stats.Uniformity(len(tokens[i])),
			})
			vectors[i] = vec
			rollup[i] = aggregate.Sentence{AI: res.AI, Plagiarism: res.Plagiarism, Confidence: res.Confidence}
			report.Sentences = append(report.Sentences, SentenceScore{
				Index:       s.Index,
				Sentence:    s.Text,
				AI:          res.AI,
				Plagiarism:  res.Plagiarism,
				Confidence:  res.Confidence,
				Source:      res.Source,
				InternalMax: sig.InternalMax,
				ExternalMax: sig.ExternalMax,
				Features:    reported(vec),
			})
		}
		return nil
	})

	var doc aggregate.Scores
	e.withSpan(ctx, &report, "aggregate_document", func(context.Context) error {
		doc = aggregate.Document(rollup, e.cfg.PlagiarismPercentile)
		return nil
	})

	if e.predictor != nil {
		e.withSpan(ctx, &report, "ml_fusion", func(ctx context.Context) error {
			var err error
			doc, err = e.fuse(ctx, &report, in.Text, doc)
			return err
		})
	}

	report.AIScore = doc.AI
	report.Plagiarism = doc.Plagiarism
	report.Confidence = doc.Confidence
	report.Analysis = summarize(report.Analysis, report.AIScore, report.Sentences, stats, vectors)
	e.finish(&report, startAll)
	return report
}

// fuse blends document scores with the predictor's output, or returns them
// unchanged after recording why the predictor could not be used. The
// returned error only marks the span; the report already carries it.
func (e *Engine) fuse(ctx context.Context, report *Report, text string, doc aggregate.Scores) (aggregate.Scores, error) {
	mlCtx, cancel := context.WithTimeout(ctx, e.cfg.MLTimeout)
	defer cancel()

	pred, err := e.predictor.Predict(mlCtx, text)
	if err == nil {
		err = mlfusion.ValidatePrediction(pred)
	}
	if err != nil {
		kind := mlfusion.ClassifyError(err)
		report.Errors = append(report.Errors, ErrorEntry{
			Stage:     "ml_fusion",
			Message:   err.Error(),
			Type:      kind,
			Retryable: kind != "malformed",
		})
		metrics.MLFallbacks.WithLabelValues(kind).Inc()
		e.logger.Warn("ml prediction failed, using heuristic scores",
			zap.String("document_id", report.DocumentID),
			zap.String("predictor", e.predictor.Name()),
			zap.String("error_type", kind),
			zap.Error(err),
		)
		return doc, &degradation{err: err}
	}
	report.Analysis.ModelUsed = ModelHeuristic + "+" + e.predictor.Name()
	return mlfusion.Fuse(doc, pred, e.cfg.Fusion), nil
}

func (e *Engine) finish(report *Report, start time.Time) {
	elapsed := time.Since(start)
	metrics.AnalysesTotal.WithLabelValues(report.Analysis.ModelUsed).Inc()
	metrics.DocumentAIScore.Observe(float64(report.AIScore))
	metrics.DocumentPlagiarismScore.Observe(float64(report.Plagiarism))
	metrics.SentencesPerDocument.Observe(float64(len(report.Sentences)))
	metrics.AnalysisDuration.Observe(elapsed.Seconds())

	e.logger.Info("document analysis completed",
		zap.String("run_id", report.RunID),
		zap.String("document_id", report.DocumentID),
		zap.Int("sentences", len(report.Sentences)),
		zap.Int("ai_score", report.AIScore),
		zap.Int("plagiarism", report.Plagiarism),
		zap.Int("confidence", report.Confidence),
		zap.String("model_used", report.Analysis.ModelUsed),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("duration", elapsed),
	)
}

// Highlights selects the sentences to emphasize using the engine's ladder.
func (e *Engine) Highlights(r Report) []highlight.Group {
	return r.Highlights(e.cfg.Highlight)
}

func (r Report) Highlights(th highlight.Thresholds) []highlight.Group {
	scored := make([]highlight.Scored, len(r.Sentences))
	for i, s := range r.Sentences {
		scored[i] = highlight.Scored{Text: s.Sentence, AI: s.AI, Plagiarism: s.Plagiarism}
	}
	return highlight.Select(scored, r.Plagiarism, th)
}

func corpusDocuments(in []CorpusDocument) []similarity.Document {
	out := make([]similarity.Document, 0, len(in))
	for _, d := range in {
		sentences := segment.Split(d.Text)
		toks := make([][]string, 0, len(sentences))
		for _, s := range sentences {
			if t := features.Tokenize(s); len(t) > 0 {
				toks = append(toks, t)
			}
		}
		if len(toks) == 0 {
			continue
		}
		out = append(out, similarity.Document{ID: d.ID, Sentences: toks})
	}
	return out
}

func reported(v features.Vector) SentenceFeatures {
	return SentenceFeatures{
		LexicalDiversity:    v.LexicalDiversity,
		StopwordRatio:       v.StopwordRatio,
		AvgWordLength:       v.AvgWordLength,
		CharEntropy:         v.CharEntropy,
		SyntacticComplexity: v.SyntacticComplexity,
		SemanticCoherence:   v.SemanticCoherence,
		AIPatternScore:      v.AIPatternScore,
		WordCount:           v.WordCount,
	}
}
