package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docaudit/internal/aidetect"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"), nil)
	require.NoError(t, err)

	def := aidetect.DefaultConfig()
	assert.Equal(t, def, cfg.EngineConfig())
	assert.Equal(t, ProviderNone, cfg.ML.Provider)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10*time.Minute, cfg.Corpus.CacheTTL)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
engine:
  ngram_size: 6
  ml_timeout: 2s
weights:
  version: "test-1"
  bias: -25
fusion:
  heuristic: 0.7
  ml: 0.3
highlight:
  ai:
    strict: 80
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Engine.NGramSize)
	assert.Equal(t, 2*time.Second, cfg.Engine.MLTimeout)
	assert.Equal(t, "test-1", cfg.Weights.Version)
	assert.Equal(t, -25.0, cfg.Weights.Bias)
	assert.Equal(t, aidetect.DefaultConfig().Weights.External, cfg.Weights.External)
	assert.Equal(t, 0.7, cfg.Fusion.Heuristic)
	assert.Equal(t, 80, cfg.Highlight.AI.Strict)
	assert.Equal(t, 50, cfg.Highlight.AI.Relaxed)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DOCAUDIT_ENGINE_NGRAM_SIZE", "7")
	t.Setenv("DOCAUDIT_WEIGHTS_BIAS", "-10")
	cfg, err := Load(writeConfig(t, "engine:\n  ngram_size: 6\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.NGramSize)
	assert.Equal(t, -10.0, cfg.Weights.Bias)
}

func TestLoadFlagOverride(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("ngram", 5, "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--ngram=4", "--log-level=debug"}))

	cfg, err := Load(writeConfig(t, "engine:\n  ngram_size: 6\n"), flags)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.NGramSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"ngram":       "engine:\n  ngram_size: 9\n",
		"fusion":      "fusion:\n  heuristic: 0.3\n  ml: 0.7\n",
		"provider":    "ml:\n  provider: bard\n",
		"openai key":  "ml:\n  provider: openai\n",
		"http target": "ml:\n  provider: http\n",
	}
	for name, body := range cases {
		_, err := Load(writeConfig(t, body), nil)
		assert.ErrorIs(t, err, aidetect.ErrInvalidConfig, name)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}
