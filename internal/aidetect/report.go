package aidetect

// CorpusDocument is one reference text supplied with an analysis call.
type CorpusDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Input struct {
	DocumentID string           `json:"document_id"`
	Text       string           `json:"text"`
	Corpus     []CorpusDocument `json:"corpus,omitempty"`
}

type ErrorEntry struct {
	Stage     string `json:"stage"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Retryable bool   `json:"retryable"`
}

type SpanTrace struct {
	Name       string `json:"name"`
	DurationMs int64  `json:"duration_ms"`
	Status     string `json:"status"`
}

// SentenceFeatures is the part of the feature vector surfaced on reports.
type SentenceFeatures struct {
	LexicalDiversity    float64 `json:"lexicalDiversity"`
	StopwordRatio       float64 `json:"stopwordRatio"`
	AvgWordLength       float64 `json:"avgWordLength"`
	CharEntropy         float64 `json:"charEntropy"`
	SyntacticComplexity float64 `json:"syntacticComplexity"`
	SemanticCoherence   float64 `json:"semanticCoherence"`
	AIPatternScore      float64 `json:"aiPatternScore"`
	WordCount           int     `json:"wordCount"`
}

type SentenceScore struct {
	Index       int              `json:"index"`
	Sentence    string           `json:"sentence"`
	AI          int              `json:"ai"`
	Plagiarism  int              `json:"plagiarism"`
	Confidence  int              `json:"confidence"`
	Source      string           `json:"source,omitempty"`
	InternalMax float64          `json:"internalMax"`
	ExternalMax float64          `json:"externalMax"`
	Features    SentenceFeatures `json:"features"`
}

const (
	StyleAI    = "ai-generated"
	StyleMixed = "mixed"
	StyleHuman = "human"

	ModelHeuristic = "heuristic"
)

type Analysis struct {
	Style           string   `json:"style"`
	Flags           []string `json:"flags"`
	Recommendations []string `json:"recommendations"`
	ModelUsed       string   `json:"modelUsed"`
}

type Report struct {
	RunID          string          `json:"run_id"`
	DocumentID     string          `json:"document_id"`
	AIScore        int             `json:"aiScore"`
	Plagiarism     int             `json:"plagiarism"`
	Confidence     int             `json:"confidence"`
	Sentences      []SentenceScore `json:"sentences"`
	Analysis       Analysis        `json:"analysis"`
	WordCount      int             `json:"word_count"`
	WeightsVersion string          `json:"weights_version"`
	Errors         []ErrorEntry    `json:"errors"`
	Traces         []SpanTrace     `json:"traces"`
}
