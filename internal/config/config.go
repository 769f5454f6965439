package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"docaudit/internal/aidetect"
	"docaudit/internal/highlight"
	"docaudit/internal/logger"
	"docaudit/internal/mlfusion"
	"docaudit/internal/scoring"
)

type Config struct {
	Engine    EngineConfig           `mapstructure:"engine"`
	Weights   scoring.Weights        `mapstructure:"weights"`
	Fusion    mlfusion.FusionWeights `mapstructure:"fusion"`
	Highlight highlight.Thresholds   `mapstructure:"highlight"`
	ML        MLConfig               `mapstructure:"ml"`
	Corpus    CorpusConfig           `mapstructure:"corpus"`
	Logging   logger.Config          `mapstructure:"logging"`
	Metrics   MetricsConfig          `mapstructure:"metrics"`
}

type EngineConfig struct {
	NGramSize            int           `mapstructure:"ngram_size"`
	DisclosureThreshold  float64       `mapstructure:"disclosure_threshold"`
	PlagiarismPercentile float64       `mapstructure:"plagiarism_percentile"`
	MLTimeout            time.Duration `mapstructure:"ml_timeout"`
	Workers              int           `mapstructure:"workers"`
}

const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

type MLConfig struct {
	Provider          string        `mapstructure:"provider"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Endpoint          string        `mapstructure:"endpoint"`
	MaxInputRunes     int           `mapstructure:"max_input_runes"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	Temperature       float32       `mapstructure:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type CorpusConfig struct {
	Path          string        `mapstructure:"path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// FlagKeys maps CLI flag names onto configuration keys.
var FlagKeys = map[string]string{
	"ngram":        "engine.ngram_size",
	"disclosure":   "engine.disclosure_threshold",
	"percentile":   "engine.plagiarism_percentile",
	"workers":      "engine.workers",
	"ml-provider":  "ml.provider",
	"ml-model":     "ml.model",
	"ml-endpoint":  "ml.endpoint",
	"corpus-db":    "corpus.path",
	"redis-addr":   "corpus.redis_addr",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"metrics-file": "metrics.textfile",
}

// Load reads docaudit.yaml (or file, when set), DOCAUDIT_* environment
// variables and the flags named in FlagKeys, in increasing precedence.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("docaudit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/docaudit")
	}

	v.SetEnvPrefix("DOCAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v); err != nil {
		return nil, err
	}
	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) EngineConfig() aidetect.Config {
	return aidetect.Config{
		NGramSize:            c.Engine.NGramSize,
		DisclosureThreshold:  c.Engine.DisclosureThreshold,
		PlagiarismPercentile: c.Engine.PlagiarismPercentile,
		MLTimeout:            c.Engine.MLTimeout,
		Weights:              c.Weights,
		Fusion:               c.Fusion,
		Highlight:            c.Highlight,
	}
}

func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return err
	}
	switch c.ML.Provider {
	case ProviderNone, "":
	case ProviderOpenAI:
		if c.ML.APIKey == "" {
			return fmt.Errorf("%w: ml.api_key is required for the openai provider", aidetect.ErrInvalidConfig)
		}
	case ProviderHTTP:
		if c.ML.Endpoint == "" {
			return fmt.Errorf("%w: ml.endpoint is required for the http provider", aidetect.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown ml provider %q", aidetect.ErrInvalidConfig, c.ML.Provider)
	}
	if c.Engine.Workers < 0 {
		return fmt.Errorf("%w: engine.workers must not be negative", aidetect.ErrInvalidConfig)
	}
	return nil
}

func setDefaults(v *viper.Viper) error {
	engine := aidetect.DefaultConfig()
	v.SetDefault("engine.ngram_size", engine.NGramSize)
	v.SetDefault("engine.disclosure_threshold", engine.DisclosureThreshold)
	v.SetDefault("engine.plagiarism_percentile", engine.PlagiarismPercentile)
	v.SetDefault("engine.ml_timeout", engine.MLTimeout)
	v.SetDefault("engine.workers", 0)

	for prefix, value := range map[string]any{
		"weights":   engine.Weights,
		"fusion":    engine.Fusion,
		"highlight": engine.Highlight,
	} {
		if err := setStructDefaults(v, prefix, value); err != nil {
			return err
		}
	}

	v.SetDefault("ml.provider", ProviderNone)
	v.SetDefault("ml.model", "gpt-3.5-turbo")
	v.SetDefault("ml.max_input_runes", 12000)
	v.SetDefault("ml.max_attempts", 3)
	v.SetDefault("ml.temperature", 0.0)
	v.SetDefault("ml.timeout", 10*time.Second)
	v.SetDefault("ml.requests_per_second", 2.0)
	v.SetDefault("ml.burst", 1)

	v.SetDefault("corpus.path", "")
	v.SetDefault("corpus.redis_addr", "")
	v.SetDefault("corpus.redis_db", 0)
	v.SetDefault("corpus.cache_ttl", 10*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stderr")

	v.SetDefault("metrics.textfile", "")
	return nil
}

// setStructDefaults registers every field of value under prefix, so each
// key can be overridden from the environment on its own.
func setStructDefaults(v *viper.Viper, prefix string, value any) error {
	flat := map[string]any{}
	if err := mapstructure.Decode(value, &flat); err != nil {
		return fmt.Errorf("flatten %s defaults: %w", prefix, err)
	}
	for k, val := range flat {
		if nested, ok := val.(map[string]any); ok {
			if err := setStructDefaults(v, prefix+"."+k, nested); err != nil {
				return err
			}
			continue
		}
		v.SetDefault(prefix+"."+k, val)
	}
	return nil
}
