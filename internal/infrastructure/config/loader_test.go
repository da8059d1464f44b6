package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Translator.Provider != "ollama" {
		t.Fatalf("unexpected default provider: %q", cfg.Translator.Provider)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `config_format_version: "1"
translator:
  provider: openai
  endpoint: https://api.openai.com/v1/chat/completions
  model_id: gpt-4o-mini
  auth_env_var: OPENAI_API_KEY
execution:
  auto_execute_safe: true
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Translator.Provider != "openai" {
		t.Fatalf("unexpected provider: %q", cfg.Translator.Provider)
	}
	if !cfg.Execution.AutoExecuteSafe {
		t.Fatal("auto_execute_safe not read")
	}
	// fields omitted from the file pick up defaults
	if cfg.Execution.ConfirmTimeoutSeconds != 120 {
		t.Fatalf("confirm timeout default missing: %d", cfg.Execution.ConfirmTimeoutSeconds)
	}
	if cfg.Suggestions.MaxResults != 10 {
		t.Fatalf("suggestion defaults missing: %+v", cfg.Suggestions)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("translator: [not a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestPathHonorsEnvOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("LLMSH_CONFIG", override)

	if got := NewFileLoader("").Path(); got != override {
		t.Fatalf("expected %q, got %q", override, got)
	}
}
