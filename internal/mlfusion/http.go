package mlfusion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type HTTPConfig struct {
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *zap.Logger
}

// HTTPPredictor posts the document to a model server that answers with a
// Prediction JSON body.
type HTTPPredictor struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
	ready    atomic.Bool
}

func NewHTTPPredictor(cfg HTTPConfig) *HTTPPredictor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &HTTPPredictor{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		logger:   cfg.Logger,
	}
}

func (p *HTTPPredictor) Name() string { return "http" }

func (p *HTTPPredictor) Initialize(context.Context) error {
	u, err := url.Parse(p.endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid ml endpoint %q", p.endpoint)
	}
	p.ready.Store(true)
	p.logger.Info("http predictor initialized", zap.String("endpoint", p.endpoint))
	return nil
}

type predictRequest struct {
	Text string `json:"text"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, text string) (Prediction, error) {
	if !p.ready.Load() {
		return Prediction{}, ErrNotInitialized
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return Prediction{}, fmt.Errorf("rate limiter: %w", err)
	}
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return Prediction{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Prediction{}, ctx.Err()
		}
		return Prediction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Prediction{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out Prediction
	if err := json.Unmarshal(raw, &out); err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrMalformedPrediction, err)
	}
	if err := ValidatePrediction(out); err != nil {
		return Prediction{}, err
	}
	return out, nil
}

func (p *HTTPPredictor) Dispose() error {
	p.ready.Store(false)
	p.client.CloseIdleConnections()
	return nil
}
