package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appDirName = "inboxpilot"

// LLMConfig holds all LLM-related configuration
type LLMConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Provider string `json:"provider" yaml:"provider"` // gemini, ollama, bedrock
	Model    string `json:"model" yaml:"model"`
	Endpoint string `json:"endpoint" yaml:"endpoint"` // ollama only
	Region   string `json:"region" yaml:"region"`     // For AWS Bedrock
	APIKey   string `json:"api_key" yaml:"api_key"`
	Timeout  string `json:"timeout" yaml:"timeout"`
}

// RedisConfig configures the redis storage backend
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// StorageConfig selects where triage records are persisted
type StorageConfig struct {
	// Backend is one of sqlite, redis, memory
	Backend   string      `json:"backend" yaml:"backend"`
	Path      string      `json:"path" yaml:"path"`
	Namespace string      `json:"namespace" yaml:"namespace"`
	Redis     RedisConfig `json:"redis" yaml:"redis"`
}

// ServerConfig configures the dashboard HTTP server
type ServerConfig struct {
	Addr         string   `json:"addr" yaml:"addr"`
	AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
}

// TriageConfig tunes the triage pipeline and mailbox listing
type TriageConfig struct {
	AutoSaveReminders     bool  `json:"auto_save_reminders" yaml:"auto_save_reminders"`
	PageSize              int64 `json:"page_size" yaml:"page_size"`
	SubscriptionScanLimit int64 `json:"subscription_scan_limit" yaml:"subscription_scan_limit"`
}

// PromptsConfig overrides the built-in default prompts.
// Template paths are relative to the config dir or absolute; inline prompts
// are used when no template file can be read.
type PromptsConfig struct {
	CategorizationTemplate string `json:"categorization_template" yaml:"categorization_template"`
	ActionItemsTemplate    string `json:"action_items_template" yaml:"action_items_template"`
	AutoReplyTemplate      string `json:"auto_reply_template" yaml:"auto_reply_template"`
	QuickReplyTemplate     string `json:"quick_reply_template" yaml:"quick_reply_template"`

	Categorization string `json:"categorization,omitempty" yaml:"categorization,omitempty"`
	ActionItems    string `json:"action_items,omitempty" yaml:"action_items,omitempty"`
	AutoReply      string `json:"auto_reply,omitempty" yaml:"auto_reply,omitempty"`
	QuickReply     string `json:"quick_reply,omitempty" yaml:"quick_reply,omitempty"`
}

// Config holds all configuration for inboxpilot
type Config struct {
	Credentials string `json:"credentials" yaml:"credentials"`
	Token       string `json:"token" yaml:"token"`

	LLM     LLMConfig     `json:"llm" yaml:"llm"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Triage  TriageConfig  `json:"triage" yaml:"triage"`
	Prompts PromptsConfig `json:"prompts" yaml:"prompts"`

	// Logging
	LogFile  string `json:"log_file" yaml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM:     DefaultLLMConfig(),
		Storage: DefaultStorageConfig(),
		Server: ServerConfig{
			Addr:         ":3000",
			AllowOrigins: []string{"*"},
		},
		Triage: TriageConfig{
			AutoSaveReminders:     false,
			PageSize:              10,
			SubscriptionScanLimit: 50,
		},
		LogLevel: "info",
	}
}

// DefaultLLMConfig returns default LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Enabled:  true,
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
		Endpoint: "http://localhost:11434/api/generate",
		Timeout:  "20s",
	}
}

// DefaultStorageConfig returns default storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:   "sqlite",
		Path:      "",
		Namespace: "email-ext",
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file.
// A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := decode(configPath, data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// applyEnv fills secrets that are commonly provided through the environment
func (c *Config) applyEnv() {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	}
	if addr := os.Getenv("INBOXPILOT_REDIS_ADDR"); addr != "" {
		c.Storage.Redis.Addr = addr
	}
}

// DefaultConfigDir returns ~/.config/inboxpilot
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// DefaultCredentialPaths returns the default paths for credentials and token
func DefaultCredentialPaths() (string, string) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", ""
	}
	return filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json")
}

// DefaultDBPath returns the default sqlite database path
func DefaultDBPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "inboxpilot.db")
}

// DefaultLogPath returns the default log file path
func DefaultLogPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "inboxpilot.log")
}

// SaveConfig saves the configuration to a file, as YAML when the extension says so
func (c *Config) SaveConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// GetLLMTimeout returns parsed timeout for LLM
func (c *Config) GetLLMTimeout() time.Duration {
	if c.LLM.Timeout != "" {
		if d, err := time.ParseDuration(c.LLM.Timeout); err == nil {
			return d
		}
	}
	return 20 * time.Second
}

// StoragePath returns the sqlite path, falling back to the default location
func (c *Config) StoragePath() string {
	if strings.TrimSpace(c.Storage.Path) != "" {
		return c.Storage.Path
	}
	return DefaultDBPath()
}

// LoadTemplate loads a template with proper priority: file first, then inline, then fallback
func LoadTemplate(templatePath, inlinePrompt, fallbackPrompt string) string {
	if strings.TrimSpace(templatePath) != "" {
		fullPath := templatePath
		if !filepath.IsAbs(templatePath) {
			fullPath = filepath.Join(DefaultConfigDir(), templatePath)
		}
		if content, err := os.ReadFile(fullPath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if strings.TrimSpace(inlinePrompt) != "" {
		return inlinePrompt
	}

	return fallbackPrompt
}

// Resolve returns the configured default for a prompt key, or fallback when
// neither a template file nor an inline prompt is configured
func (p PromptsConfig) Resolve(key, fallback string) string {
	switch key {
	case "categorization":
		return LoadTemplate(p.CategorizationTemplate, p.Categorization, fallback)
	case "action-items":
		return LoadTemplate(p.ActionItemsTemplate, p.ActionItems, fallback)
	case "auto-reply":
		return LoadTemplate(p.AutoReplyTemplate, p.AutoReply, fallback)
	case "quick-reply":
		return LoadTemplate(p.QuickReplyTemplate, p.QuickReply, fallback)
	default:
		return fallback
	}
}
