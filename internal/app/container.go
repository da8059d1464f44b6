// Package app assembles the dependency graph.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/infrastructure/cache"
	"github.com/llmsh/llmsh/internal/infrastructure/classifier"
	"github.com/llmsh/llmsh/internal/infrastructure/config"
	"github.com/llmsh/llmsh/internal/infrastructure/contextdetect"
	"github.com/llmsh/llmsh/internal/infrastructure/executor"
	"github.com/llmsh/llmsh/internal/infrastructure/history"
	"github.com/llmsh/llmsh/internal/infrastructure/translate"
	"github.com/llmsh/llmsh/internal/pkg/logger"
	"github.com/llmsh/llmsh/internal/ports"
	"github.com/llmsh/llmsh/internal/services"
)

// Container wires application services with infrastructure adapters.
type Container struct {
	Pipeline     *services.Pipeline
	Ranker       *services.Ranker
	ConfigLoader *config.FileLoader
	Config       domain.Config
	HistoryStore ports.HistoryStore
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph from the loaded config.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	store := buildHistoryStore(cfg, log)
	if cfg.History.RetentionDays > 0 {
		if pruned, err := store.PruneOlderThan(cfg.History.RetentionDays); err != nil {
			log.Warn("retention prune failed", map[string]interface{}{"error": err.Error()})
		} else if pruned > 0 {
			log.Debug("pruned old history", map[string]interface{}{"entries": pruned})
		}
	}
	detector := contextdetect.NewMarkerDetector()

	riskClassifier, err := classifier.New(classifier.Options{
		RulesFile: cfg.Security.RulesFile,
		Depth:     classifier.SplitDepth(cfg.Security.SplitDepth),
	})
	if err != nil {
		// an unparseable custom rules file must not leave commands unassessed
		log.Warn("custom rules unusable, using built-in table", map[string]interface{}{"error": err.Error()})
		riskClassifier, err = classifier.New(classifier.Options{})
		if err != nil {
			return nil, err
		}
	}

	translator := translate.New(cfg.Translator, &http.Client{
		Timeout: time.Duration(cfg.Translator.TimeoutSeconds) * time.Second,
	})

	var translationCache ports.TranslationCache
	if cfg.Cache.Enabled {
		translationCache = cache.NewFileCache("", time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	}

	shell := cfg.Execution.Shell
	if shell == "auto" {
		shell = ""
	}

	pipeline := &services.Pipeline{
		Translator: translator,
		Classifier: riskClassifier,
		Executor:   executor.NewLocalExecutor(shell),
		Detector:   detector,
		Store:      store,
		Cache:      translationCache,
		Logger:     log,
		Session: domain.SessionConfig{
			TranslateTimeout: time.Duration(cfg.Translator.TimeoutSeconds) * time.Second,
			ExecTimeout:      time.Duration(cfg.Execution.TimeoutSeconds) * time.Second,
			ConfirmTimeout:   time.Duration(cfg.Execution.ConfirmTimeoutSeconds) * time.Second,
			SkipSafeConfirm:  cfg.Execution.AutoExecuteSafe,
		},
	}

	ranker := &services.Ranker{
		Store:    store,
		Detector: detector,
		Settings: cfg.Suggestions,
	}

	return &Container{
		Pipeline:     pipeline,
		Ranker:       ranker,
		ConfigLoader: cfgLoader,
		Config:       cfg,
		HistoryStore: store,
		Logger:       log,
	}, nil
}

// buildHistoryStore honors the configured backend and falls back to JSONL
// when SQLite cannot be opened. History must keep working on a read-only or
// odd filesystem.
func buildHistoryStore(cfg domain.Config, log ports.Logger) ports.HistoryStore {
	if cfg.History.Backend == "jsonl" {
		return history.NewFileStore(cfg.History.Path)
	}
	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		log.Warn("sqlite unavailable, falling back to jsonl history", map[string]interface{}{"error": err.Error()})
		return history.NewFileStore("")
	}
	return store
}
