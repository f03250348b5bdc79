package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mnemolabs/mnemo/internal/core/documents"
	"github.com/mnemolabs/mnemo/internal/core/narration"
)

const (
	DefaultProvider    = "googleai"
	DefaultGeminiModel = "gemini-1.5-flash"
)

type Config struct {
	Provider     string
	ExcerptLimit int

	// Google AI settings. The API key may also come from the
	// GEMINI_API_KEY environment variable.
	GeminiAPIKey string
	GeminiModel  string

	// Bedrock settings, all optional. Empty values fall back to the
	// standard AWS credential chain.
	AWSRegion          string
	AWSProfile         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	BedrockModelID     string

	Narration NarrationConfig

	// DBPath is where the session snapshot lives. AuditLogPath is
	// where audit events are appended; empty disables the audit log.
	DBPath       string
	AuditLogPath string
}

type NarrationConfig struct {
	Disabled bool
	Language string
	Gender   string
}

// Preference converts the narration settings into a voice preference.
func (n NarrationConfig) Preference() narration.Preference {
	pref := narration.DefaultPreference
	if n.Language != "" {
		pref.Language = n.Language
	}
	if n.Gender != "" {
		pref.Gender = n.Gender
	}
	return pref
}

type tomlConfig struct {
	Provider     string `toml:"provider"`
	ExcerptLimit int    `toml:"excerpt_limit"`

	GeminiAPIKey string `toml:"gemini_api_key"`
	GeminiModel  string `toml:"gemini_model"`

	AWSRegion          string `toml:"aws_region"`
	AWSProfile         string `toml:"aws_profile"`
	AWSAccessKeyID     string `toml:"aws_access_key_id"`
	AWSSecretAccessKey string `toml:"aws_secret_access_key"`
	BedrockModelID     string `toml:"bedrock_model_id"`

	DBPath       string `toml:"db_path"`
	AuditLogPath string `toml:"audit_log_path"`

	Narration struct {
		Disabled bool   `toml:"disabled"`
		Language string `toml:"language"`
		Gender   string `toml:"gender"`
	} `toml:"narration"`
}

// Load reads config from ~/.config/mnemo/config.toml, falling back to
// defaults when the file or individual keys are absent. Environment
// variables win over the file for credentials.
func Load() (*Config, error) {
	cfg := &Config{
		Provider:     DefaultProvider,
		ExcerptLimit: documents.DefaultExcerptLimit,
		GeminiModel:  DefaultGeminiModel,
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults
	}

	configDir := filepath.Join(home, ".config", "mnemo")
	cfg.DBPath = filepath.Join(configDir, "mnemo.db")
	cfg.AuditLogPath = filepath.Join(configDir, "audit.log")

	tomlPath := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err != nil {
			return nil, err
		}
		applyFile(cfg, &tc)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if provider := os.Getenv("MNEMO_PROVIDER"); provider != "" {
		cfg.Provider = provider
	}

	return cfg, nil
}

func applyFile(cfg *Config, tc *tomlConfig) {
	if tc.Provider != "" {
		cfg.Provider = tc.Provider
	}
	if tc.ExcerptLimit > 0 {
		cfg.ExcerptLimit = tc.ExcerptLimit
	}
	if tc.GeminiAPIKey != "" {
		cfg.GeminiAPIKey = tc.GeminiAPIKey
	}
	if tc.GeminiModel != "" {
		cfg.GeminiModel = tc.GeminiModel
	}
	cfg.AWSRegion = tc.AWSRegion
	cfg.AWSProfile = tc.AWSProfile
	cfg.AWSAccessKeyID = tc.AWSAccessKeyID
	cfg.AWSSecretAccessKey = tc.AWSSecretAccessKey
	cfg.BedrockModelID = tc.BedrockModelID
	if tc.DBPath != "" {
		cfg.DBPath = tc.DBPath
	}
	if tc.AuditLogPath != "" {
		cfg.AuditLogPath = tc.AuditLogPath
	}
	cfg.Narration.Disabled = tc.Narration.Disabled
	cfg.Narration.Language = tc.Narration.Language
	cfg.Narration.Gender = tc.Narration.Gender
}
