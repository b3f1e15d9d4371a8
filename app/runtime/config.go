package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures every knob shared across the declutter CLI entry points.
// Keeping it as a lightweight struct makes it trivial to reuse in tests.
// API keys deliberately have no place here: they are resolved from the
// environment so config files stay safe to commit.
type Config struct {
	Provider         string        `yaml:"provider"`
	Model            string        `yaml:"model"`
	BaseURL          string        `yaml:"base_url"`
	MaxTokens int `yaml:"max_tokens"`
	// Temperature stays a pointer so a configured zero is distinguishable
	// from an absent key.
	Temperature      *float64      `yaml:"temperature"`
	Timeout          time.Duration `yaml:"timeout"`
	FilePreviewLimit int           `yaml:"file_preview_limit"`
	SessionDBPath    string        `yaml:"session_db"`
	TracePath        string        `yaml:"trace_path"`
	DebugLLM         bool          `yaml:"debug_llm"`
}

// DefaultConfig infers sensible defaults based on the user's home
// directory. Errors from os.UserHomeDir are ignored so callers can override
// manually.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Provider:      "openai",
		Timeout:       120 * time.Second,
		SessionDBPath: filepath.Join(home, ".declutter", "sessions.db"),
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; the defaults simply stand.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize fills missing defaults and ensures the session database
// directory exists so runtime initialization never re-checks the same
// invariants.
func (c *Config) Normalize() error {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.SessionDBPath == "" {
		c.SessionDBPath = DefaultConfig().SessionDBPath
	}
	if err := os.MkdirAll(filepath.Dir(c.SessionDBPath), 0o755); err != nil {
		return fmt.Errorf("create session db directory: %w", err)
	}
	return nil
}

// APIKey resolves the credential for the configured provider from the
// environment.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	}
	return ""
}
