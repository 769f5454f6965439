package mlfusion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"docaudit/internal/prompts"
	"docaudit/internal/resilience"
)

type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	MaxInputRunes int
	Temperature   float32
	MaxAttempts   int
	Logger        *zap.Logger
}

// OpenAIPredictor asks a chat model for a document-level verdict. Calls go
// through a circuit breaker wrapping a retry loop.
type OpenAIPredictor struct {
	client        *openai.Client
	apiKey        string
	model         string
	maxInputRunes int
	temperature   float32
	breaker       *resilience.Breaker
	retry         resilience.RetryConfig
	logger        *zap.Logger
	ready         atomic.Bool
}

func NewOpenAIPredictor(cfg OpenAIConfig) *OpenAIPredictor {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	if cfg.MaxInputRunes <= 0 {
		cfg.MaxInputRunes = 12000
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	retry := resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		retry.MaxAttempts = cfg.MaxAttempts
	}
	retry.Logger = cfg.Logger
	retry.Retryable = func(err error) bool { return !errors.Is(err, ErrMalformedPrediction) }

	return &OpenAIPredictor{
		client:        openai.NewClientWithConfig(clientCfg),
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		maxInputRunes: cfg.MaxInputRunes,
		temperature:   cfg.Temperature,
		breaker: resilience.NewBreaker("openai", resilience.BreakerConfig{
			FailureThreshold: 5,
			CoolDown:         30 * time.Second,
			Logger:           cfg.Logger,
		}),
		retry:  retry,
		logger: cfg.Logger,
	}
}

func (p *OpenAIPredictor) Name() string { return "openai:" + p.model }

func (p *OpenAIPredictor) Initialize(context.Context) error {
	if strings.TrimSpace(p.apiKey) == "" {
		return fmt.Errorf("%w: missing api key", ErrUnavailable)
	}
	p.ready.Store(true)
	p.logger.Info("openai predictor initialized", zap.String("model", p.model))
	return nil
}

func (p *OpenAIPredictor) Predict(ctx context.Context, text string) (Prediction, error) {
	if !p.ready.Load() {
		return Prediction{}, ErrNotInitialized
	}
	input, truncated := truncateRunes(text, p.maxInputRunes)
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: p.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.DetectionSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompts.DetectionUserPrompt(input, truncated)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	var out Prediction
	err := p.breaker.Execute(func() error {
		return resilience.Retry(ctx, p.retry, func(ctx context.Context) error {
			resp, err := p.client.CreateChatCompletion(ctx, req)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("%w: empty choices", ErrMalformedPrediction)
			}
			parsed, err := parseCompletion(resp.Choices[0].Message.Content)
			if err != nil {
				return err
			}
			out = parsed
			return nil
		})
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return Prediction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return Prediction{}, err
	}
	return out, nil
}

func (p *OpenAIPredictor) Dispose() error {
	p.ready.Store(false)
	return nil
}

type completionBody struct {
	AIScore         *float64           `json:"ai_score"`
	PlagiarismScore *float64           `json:"plagiarism_score"`
	Confidence      *float64           `json:"confidence"`
	Features        map[string]float64 `json:"features"`
}

func parseCompletion(content string) (Prediction, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	var body completionBody
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &body); err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrMalformedPrediction, err)
	}
	if body.AIScore == nil || body.PlagiarismScore == nil || body.Confidence == nil {
		return Prediction{}, fmt.Errorf("%w: missing score fields", ErrMalformedPrediction)
	}
	p := Prediction{
		AIScore:         *body.AIScore,
		PlagiarismScore: *body.PlagiarismScore,
		Confidence:      *body.Confidence,
		Features:        body.Features,
	}
	if err := ValidatePrediction(p); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

func truncateRunes(s string, max int) (string, bool) {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s, false
	}
	return string(r[:max]), true
}
