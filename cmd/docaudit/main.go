package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"docaudit/internal/aidetect"
	"docaudit/internal/config"
	"docaudit/internal/corpus"
	"docaudit/internal/highlight"
	"docaudit/internal/ingest"
	"docaudit/internal/logger"
	"docaudit/internal/metrics"
	"docaudit/internal/mlfusion"
	"docaudit/internal/pipeline"
	"docaudit/internal/workspace"
)

type output struct {
	Source     string            `json:"source"`
	Report     aidetect.Report   `json:"report"`
	Highlights []highlight.Group `json:"highlights"`
	Marks      []highlight.Mark  `json:"marks"`
	SavedTo    string            `json:"saved_to,omitempty"`
}

func main() {
	flags := pflag.NewFlagSet("docaudit", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to docaudit.yaml")
	addToCorpus := flags.Bool("add-to-corpus", false, "store each analyzed document in the reference corpus")
	saveReports := flags.Bool("save", false, "save reports in the workspace")
	flags.Int("ngram", 5, "n-gram size for similarity (4-7)")
	flags.Float64("disclosure", 0.3, "minimum corpus similarity before a source is reported")
	flags.Float64("percentile", 90, "percentile used for document plagiarism")
	flags.Int("workers", 0, "documents analyzed in parallel (0 = number of CPUs)")
	flags.String("ml-provider", "none", "ml predictor: none, openai or http")
	flags.String("ml-model", "", "model name for the openai predictor")
	flags.String("ml-endpoint", "", "endpoint for the http predictor")
	flags.String("corpus-db", "", "sqlite corpus path (default: workspace corpus)")
	flags.String("redis-addr", "", "redis address for the corpus cache")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "json", "log format: json or console")
	flags.String("metrics-file", "", "write prometheus metrics to this textfile")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: docaudit [flags] FILE...\n")
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, flags.Args(), *addToCorpus, *saveReports); err != nil {
		log.Error("docaudit failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, paths []string, addToCorpus, save bool) error {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return err
	}

	root, err := workspace.EnsureDefault()
	if err != nil {
		return err
	}
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = workspace.CorpusPath(root)
	}
	store, err := corpus.Open(cfg.Corpus.Path)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer store.Close()

	var src interface {
		corpus.Source
		Add(context.Context, aidetect.CorpusDocument) error
	} = store
	if cfg.Corpus.RedisAddr != "" {
		cache, err := corpus.NewRedisCache(cfg.Corpus.RedisAddr, cfg.Corpus.RedisPassword, cfg.Corpus.RedisDB)
		if err != nil {
			log.Warn("corpus cache disabled", zap.Error(err))
		} else {
			defer cache.Close()
			src = corpus.NewCachedSource(store, cache, cfg.Corpus.CacheTTL, log)
		}
	}

	opts := []aidetect.Option{aidetect.WithLogger(log)}
	if p := buildPredictor(cfg, log); p != nil {
		opts = append(opts, aidetect.WithPredictor(p))
	}
	engine, err := aidetect.New(cfg.EngineConfig(), opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	docs, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	log.Info("corpus loaded", zap.String("path", cfg.Corpus.Path), zap.Int("documents", len(docs)))

	inputs := make([]aidetect.Input, 0, len(paths))
	kept := make([]string, 0, len(paths))
	for _, path := range paths {
		parsed, err := ingest.ParseFile(path)
		if err != nil {
			log.Error("skipping unreadable document", zap.String("path", path), zap.Error(err))
			continue
		}
		id := filepath.Base(path)
		inputs = append(inputs, aidetect.Input{
			DocumentID: id,
			Text:       parsed.Text,
			Corpus:     withoutDocument(docs, id),
		})
		kept = append(kept, path)
	}
	if len(inputs) == 0 {
		return errors.New("no readable documents")
	}

	reports := pipeline.AnalyzeAll(ctx, engine, inputs, cfg.Engine.Workers)

	results := make([]output, len(reports))
	for i, r := range reports {
		groups := engine.Highlights(r)
		results[i] = output{
			Source:     kept[i],
			Report:     r,
			Highlights: groups,
			Marks:      highlight.Marks(inputs[i].Text, groups),
		}
		if save {
			path, err := workspace.SaveReport(root, r)
			if err != nil {
				log.Error("failed to save report", zap.String("document_id", r.DocumentID), zap.Error(err))
			} else {
				results[i].SavedTo = path
			}
		}
		if addToCorpus {
			doc := aidetect.CorpusDocument{ID: inputs[i].DocumentID, Text: inputs[i].Text}
			if err := src.Add(ctx, doc); err != nil {
				log.Error("failed to add document to corpus", zap.String("document_id", doc.ID), zap.Error(err))
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			return err
		}
	}
	return nil
}

func buildPredictor(cfg *config.Config, log *zap.Logger) mlfusion.Predictor {
	switch cfg.ML.Provider {
	case config.ProviderOpenAI:
		return mlfusion.NewOpenAIPredictor(mlfusion.OpenAIConfig{
			APIKey:        cfg.ML.APIKey,
			BaseURL:       cfg.ML.BaseURL,
			Model:         cfg.ML.Model,
			MaxInputRunes: cfg.ML.MaxInputRunes,
			Temperature:   cfg.ML.Temperature,
			MaxAttempts:   cfg.ML.MaxAttempts,
			Logger:        log,
		})
	case config.ProviderHTTP:
		return mlfusion.NewHTTPPredictor(mlfusion.HTTPConfig{
			Endpoint:          cfg.ML.Endpoint,
			Timeout:           cfg.ML.Timeout,
			RequestsPerSecond: cfg.ML.RequestsPerSecond,
			Burst:             cfg.ML.Burst,
			Logger:            log,
		})
	default:
		return nil
	}
}

// withoutDocument drops a document's own earlier copy from its corpus, so
// re-analyzing a stored document does not match itself.
func withoutDocument(docs []aidetect.CorpusDocument, id string) []aidetect.CorpusDocument {
	out := make([]aidetect.CorpusDocument, 0, len(docs))
	for _, d := range docs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}
