// Package config provides configuration loading and structs for the bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Mattermost MattermostConfig `yaml:"mattermost"`
	LLM        LLMConfig        `yaml:"llm"`
	Confluence ConfluenceConfig `yaml:"confluence"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Session    SessionConfig    `yaml:"session"`
	Report     ReportConfig     `yaml:"report"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Server     ServerConfig     `yaml:"server"`
}

// MattermostConfig holds platform connection settings.
type MattermostConfig struct {
	URL      string `yaml:"url"`
	Token    string `yaml:"token"`
	Team     string `yaml:"team"`
	Username string `yaml:"username"`
	// PollIntervalSeconds is the delay between poll cycles.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	// ChannelRefreshSeconds is how often the direct-channel list is refreshed
	// to pick up conversations with new users.
	ChannelRefreshSeconds int `yaml:"channel_refresh_seconds"`
	TimeoutSeconds        int `yaml:"timeout_seconds"`
}

// LLMConfig holds settings for the OpenAI-compatible completion endpoint.
type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Token          string  `yaml:"token"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float32 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// ConfluenceConfig holds Confluence REST API credentials.
type ConfluenceConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	// MaxDepth bounds recursive child-page traversal.
	MaxDepth       int `yaml:"max_depth"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// AnalysisConfig holds detection engine tuning.
type AnalysisConfig struct {
	// MaxDocChars is the per-document text budget for a single prompt;
	// longer documents are chunked.
	MaxDocChars int `yaml:"max_doc_chars"`
	// ChunkWords / ChunkOverlapWords control word-window chunking.
	ChunkWords        int `yaml:"chunk_words"`
	ChunkOverlapWords int `yaml:"chunk_overlap_words"`
	// MaxChunksPerArtifact bounds how many prescreened chunks are queried.
	MaxChunksPerArtifact int `yaml:"max_chunks_per_artifact"`
	// Workers bounds concurrent LLM calls.
	Workers int `yaml:"workers"`
	// MaxRetries bounds retry attempts for transient LLM failures.
	MaxRetries int `yaml:"max_retries"`
	// MaxEvidence bounds supporting excerpts kept per verdict.
	MaxEvidence int `yaml:"max_evidence"`
}

// SessionConfig holds conversation session tuning.
type SessionConfig struct {
	// ExpiryHours is the inactivity window after which a session is reset
	// lazily on next contact.
	ExpiryHours int `yaml:"expiry_hours"`
	// DedupWindow is the count bound of the recent event-id window.
	DedupWindow int `yaml:"dedup_window"`
}

// ReportConfig holds PDF rendering settings.
type ReportConfig struct {
	// FontPath / BoldFontPath point at TTF fonts with Cyrillic coverage.
	FontPath     string `yaml:"font_path"`
	BoldFontPath string `yaml:"bold_font_path"`
}

// CatalogConfig points at an optional artifact catalog override file.
type CatalogConfig struct {
	Path string `yaml:"path"`
	// Watch enables hot reload of the override file.
	Watch bool `yaml:"watch"`
}

// ServerConfig holds ops HTTP endpoint settings.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Report.FontPath = expandPath(cfg.Report.FontPath, configDir)
	cfg.Report.BoldFontPath = expandPath(cfg.Report.BoldFontPath, configDir)
	if cfg.Catalog.Path != "" {
		cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	}

	return &cfg, nil
}

// Validate checks that required credentials are present.
func (c *Config) Validate() error {
	if c.Mattermost.URL == "" || c.Mattermost.Token == "" {
		return fmt.Errorf("mattermost url and token are required")
	}
	if c.LLM.BaseURL == "" || c.LLM.Token == "" {
		return fmt.Errorf("llm base_url and token are required")
	}
	if c.Confluence.BaseURL != "" && (c.Confluence.Username == "" || c.Confluence.Token == "") {
		return fmt.Errorf("confluence credentials are required when confluence base_url is set")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
