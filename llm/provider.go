// Package llm hosts the provider adapters that turn an AnalysisRequest into
// an AnalysisResponse against a concrete model backend. Every adapter owns
// its own transport shape and default model; prompt construction, reply
// parsing, and file attribution are delegated to the organizer package so
// backends stay interchangeable.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/lexcodex/declutter/organizer"
)

// Provider is the uniform capability every backend implements. Analyze is
// a single-shot call: one transport invocation whose outcome fully decides
// whether parsing runs. Implementations are safe for concurrent use; no
// state is shared between calls.
type Provider interface {
	Analyze(ctx context.Context, req organizer.AnalysisRequest) (*organizer.AnalysisResponse, error)
	DefaultModel() string
	Name() string
}

// Config carries the already-resolved settings an adapter is constructed
// with. Credential loading and validation happen upstream; adapters only
// fill in their own defaults for zero values.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	// Temperature is optional; nil means the adapter default. A pointer is
	// used so an explicit zero survives.
	Temperature *float64
	// Timeout is handed to the HTTP client as a connect/read limit; it is
	// not a cooperative cancellation token.
	Timeout time.Duration
	// FilePreviewLimit caps the conversational file preview.
	FilePreviewLimit int
}

const (
	defaultTimeout     = 120 * time.Second
	defaultMaxTokens   = 4096
	defaultTemperature = 0.3
)

// New builds the adapter registered under name. Recognized names are
// "openai", "anthropic", and "gemini".
func New(ctx context.Context, name string, cfg Config) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAIClient(cfg)
	case "anthropic":
		return NewAnthropicClient(cfg)
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// resolveTemperature unwraps the optional configured temperature.
func resolveTemperature(cfg Config) float64 {
	if cfg.Temperature != nil {
		return *cfg.Temperature
	}
	return defaultTemperature
}

// resolveOverrides applies per-request preference overrides on top of the
// adapter's configured defaults.
func resolveOverrides(maxTokens int, temperature float64, prefs organizer.Preferences) (int, float64) {
	if n, ok := prefs.MaxTokens(); ok {
		maxTokens = n
	}
	if t, ok := prefs.Temperature(); ok {
		temperature = t
	}
	return maxTokens, temperature
}

func wrapProviderErr(provider string, err error) error {
	return &organizer.ProviderError{Provider: provider, Err: err}
}

// requestMode labels how a request will be prompted, for telemetry.
func requestMode(req organizer.AnalysisRequest) string {
	if _, ok := req.Preferences.CustomPrompt(); ok {
		return "custom"
	}
	if _, ok := req.Preferences.Intent(); ok {
		return "conversational"
	}
	return "standard"
}
