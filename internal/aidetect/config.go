package aidetect

import (
	"errors"
	"fmt"
	"time"

	"docaudit/internal/aggregate"
	"docaudit/internal/highlight"
	"docaudit/internal/mlfusion"
	"docaudit/internal/scoring"
	"docaudit/internal/similarity"
)

var ErrInvalidConfig = errors.New("invalid engine configuration")

type Config struct {
	NGramSize            int
	DisclosureThreshold  float64
	PlagiarismPercentile float64
	MLTimeout            time.Duration
	Weights              scoring.Weights
	Fusion               mlfusion.FusionWeights
	Highlight            highlight.Thresholds
}

func DefaultConfig() Config {
	return Config{
		NGramSize:            similarity.DefaultNGram,
		DisclosureThreshold:  0.3,
		PlagiarismPercentile: aggregate.DefaultPercentile,
		MLTimeout:            5 * time.Second,
		Weights:              scoring.DefaultWeights(),
		Fusion:               mlfusion.DefaultFusionWeights(),
		Highlight:            highlight.DefaultThresholds(),
	}
}

// Validate rejects deployment mistakes before any document is processed.
func (c Config) Validate() error {
	if err := similarity.ValidateN(c.NGramSize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.DisclosureThreshold < 0 || c.DisclosureThreshold > 1 {
		return fmt.Errorf("%w: disclosure threshold %.2f outside [0,1]", ErrInvalidConfig, c.DisclosureThreshold)
	}
	if err := aggregate.ValidatePercentile(c.PlagiarismPercentile); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MLTimeout <= 0 {
		return fmt.Errorf("%w: ml timeout must be positive", ErrInvalidConfig)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Fusion.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Highlight.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
