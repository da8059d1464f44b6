// Package config loads YAML configuration from disk, writing defaults on
// first run.
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// FileLoader loads YAML configuration from ~/.llmsh/config.yaml
// (overridable via LLMSH_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

// Path resolves the effective config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("LLMSH_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(userHomeDir(), ".llmsh", "config.yaml")
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// DefaultConfig is the configuration written on first run.
func DefaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Translator: domain.TranslatorSettings{
			Provider:       "ollama",
			Endpoint:       "http://localhost:11434/api/generate",
			ModelID:        "llama3",
			AuthEnvVar:     "",
			MaxTokens:      512,
			TimeoutSeconds: 30,
		},
		Execution: domain.ExecutionSettings{
			Shell:                 "auto",
			TimeoutSeconds:        60,
			ConfirmTimeoutSeconds: 120,
			AutoExecuteSafe:       false,
		},
		Security: domain.SecuritySettings{
			RulesFile:  filepath.Join(userHomeDir(), ".llmsh", "rules.yaml"),
			SplitDepth: "statements",
		},
		History: domain.HistorySettings{
			Backend:       "sqlite",
			Path:          "",
			RetentionDays: 0,
		},
		Suggestions: domain.SuggestionSettings{
			StaticWeight:  1.0,
			HistoryWeight: 2.0,
			MaxResults:    10,
		},
		Cache: domain.CacheSettings{
			Enabled:    true,
			TTLMinutes: 60,
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Translator.Provider == "" {
		cfg.Translator.Provider = "ollama"
	}
	if cfg.Translator.MaxTokens == 0 {
		cfg.Translator.MaxTokens = 512
	}
	if cfg.Translator.TimeoutSeconds == 0 {
		cfg.Translator.TimeoutSeconds = 30
	}
	if cfg.Execution.TimeoutSeconds == 0 {
		cfg.Execution.TimeoutSeconds = 60
	}
	if cfg.Execution.ConfirmTimeoutSeconds == 0 {
		cfg.Execution.ConfirmTimeoutSeconds = 120
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = "sqlite"
	}
	if cfg.Suggestions.StaticWeight == 0 {
		cfg.Suggestions.StaticWeight = 1.0
	}
	if cfg.Suggestions.HistoryWeight == 0 {
		cfg.Suggestions.HistoryWeight = 2.0
	}
	if cfg.Suggestions.MaxResults == 0 {
		cfg.Suggestions.MaxResults = 10
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 60
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(userHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

func userHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
