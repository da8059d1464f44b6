package domain

// Config mirrors ~/.llmsh/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Translator          TranslatorSettings `yaml:"translator"`
	Execution           ExecutionSettings  `yaml:"execution"`
	Security            SecuritySettings   `yaml:"security"`
	History             HistorySettings    `yaml:"history"`
	Suggestions         SuggestionSettings `yaml:"suggestions"`
	Cache               CacheSettings      `yaml:"cache"`
}

// TranslatorSettings configures the external text-generation service.
type TranslatorSettings struct {
	Provider       string `yaml:"provider"`
	Endpoint       string `yaml:"endpoint"`
	ModelID        string `yaml:"model_id"`
	AuthEnvVar     string `yaml:"auth_env_var"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// ExecutionSettings controls how confirmed commands run.
type ExecutionSettings struct {
	Shell                 string `yaml:"shell"`
	TimeoutSeconds        int    `yaml:"timeout"`
	ConfirmTimeoutSeconds int    `yaml:"confirm_timeout"`
	AutoExecuteSafe       bool   `yaml:"auto_execute_safe"`
}

// SecuritySettings defines classifier behavior.
type SecuritySettings struct {
	RulesFile  string `yaml:"rules_file"`
	SplitDepth string `yaml:"split_depth"`
}

// HistorySettings selects and tunes the history backend.
type HistorySettings struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// SuggestionSettings holds the ranking weights for the suggest command.
type SuggestionSettings struct {
	StaticWeight  float64 `yaml:"static_weight"`
	HistoryWeight float64 `yaml:"history_weight"`
	MaxResults    int     `yaml:"max_results"`
}

// CacheSettings controls the translation cache.
type CacheSettings struct {
	Enabled    bool `yaml:"enabled"`
	TTLMinutes int  `yaml:"ttl_minutes"`
}
