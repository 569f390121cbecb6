// Package config loads matchday configuration from YAML with environment
// overrides. Defaults live in code; a missing config file is not an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all matchday configuration.
type Config struct {
	// ClubName is the club whose fan persona answers questions.
	ClubName string `yaml:"club_name"`

	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Examples ExamplesConfig `yaml:"examples"`
	Context  ContextConfig  `yaml:"context"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the match database and the conversation log store.
type DatabaseConfig struct {
	// Path is the read-only match dataset. Required.
	Path string `yaml:"path"`
	// HistoryPath stores per-session conversation logs. Empty disables
	// turn persistence.
	HistoryPath string `yaml:"history_path"`
}

// LLMConfig configures the model client.
type LLMConfig struct {
	Provider       string `yaml:"provider"` // gemini, openai
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ExamplesConfig configures the few-shot example store.
type ExamplesConfig struct {
	// Path is an optional YAML file of extra question/SQL pairs.
	Path string `yaml:"path"`
	// Watch hot-reloads the file on change.
	Watch bool `yaml:"watch"`
}

// ContextConfig tunes the conversation window.
type ContextConfig struct {
	RecentWindow       int `yaml:"recent_window"`
	OlderCharThreshold int `yaml:"older_char_threshold"`
}

// WorkflowConfig tunes turn control.
type WorkflowConfig struct {
	MaxFixAttempts     int  `yaml:"max_fix_attempts"`
	FormatOutput       bool `yaml:"format_output"`
	StepTimeoutSeconds int  `yaml:"step_timeout_seconds"`
	SchemaTTLSeconds   int  `yaml:"schema_ttl_seconds"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ClubName: "Feyenoord",
		Database: DatabaseConfig{
			Path:        "matches.sqlite",
			HistoryPath: "history.sqlite",
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 60,
		},
		Context: ContextConfig{
			RecentWindow:       15,
			OlderCharThreshold: 3000,
		},
		Workflow: WorkflowConfig{
			MaxFixAttempts:     1,
			FormatOutput:       true,
			StepTimeoutSeconds: 30,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file, falling back to defaults when it does not
// exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies MATCHDAY_* variables, plus the provider key
// variables most people already have exported.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MATCHDAY_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MATCHDAY_HISTORY_PATH"); v != "" {
		c.Database.HistoryPath = v
	}
	if v := os.Getenv("MATCHDAY_CLUB_NAME"); v != "" {
		c.ClubName = v
	}
	if v := os.Getenv("MATCHDAY_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("MATCHDAY_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("MATCHDAY_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("MATCHDAY_MAX_FIX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workflow.MaxFixAttempts = n
		}
	}
	if v := os.Getenv("MATCHDAY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	// Provider keys in priority order; an explicit MATCHDAY_API_KEY wins.
	if c.LLM.APIKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.LLM.APIKey = key
			if c.LLM.Provider == "" {
				c.LLM.Provider = "gemini"
			}
		}
	}
	if c.LLM.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			c.LLM.APIKey = key
			c.LLM.Provider = "openai"
		}
	}
}

// Validate reports startup-fatal problems: a missing dataset path or model
// credential.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("config: database.path is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("config: llm.api_key is required (set MATCHDAY_API_KEY or GEMINI_API_KEY)")
	}
	if c.Workflow.MaxFixAttempts < 1 || c.Workflow.MaxFixAttempts > 3 {
		return fmt.Errorf("config: workflow.max_fix_attempts must be between 1 and 3, got %d", c.Workflow.MaxFixAttempts)
	}
	return nil
}

// StepTimeout returns the per-step timeout as a duration.
func (c *WorkflowConfig) StepTimeout() time.Duration {
	return time.Duration(c.StepTimeoutSeconds) * time.Second
}

// SchemaTTL returns the schema cache TTL; zero means process lifetime.
func (c *WorkflowConfig) SchemaTTL() time.Duration {
	return time.Duration(c.SchemaTTLSeconds) * time.Second
}
