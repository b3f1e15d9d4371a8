package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lexcodex/declutter/organizer"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultAnthropicModel   = "claude-sonnet-4-20250514"
	anthropicVersion        = "2023-06-01"

	anthropicSystemPrompt = "You are an expert file organization assistant. " +
		"Always respond with a single JSON object and nothing else."
)

// AnthropicClient speaks the messages API: a single user message carrying
// the rendered prompt plus a top-level system instruction.
type AnthropicClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	prompts     organizer.PromptBuilder
}

// NewAnthropicClient builds the adapter from already-resolved configuration.
func NewAnthropicClient(cfg Config) (*AnthropicClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("anthropic: API key required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := resolveTemperature(cfg)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AnthropicClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		httpClient:  &http.Client{Timeout: timeout},
		prompts:     organizer.PromptBuilder{FilePreviewLimit: cfg.FilePreviewLimit},
	}, nil
}

// Name identifies the adapter in errors and telemetry.
func (c *AnthropicClient) Name() string { return "anthropic" }

// DefaultModel returns the model used when the config leaves it blank.
func (c *AnthropicClient) DefaultModel() string { return defaultAnthropicModel }

// Analyze implements Provider.
func (c *AnthropicClient) Analyze(ctx context.Context, req organizer.AnalysisRequest) (*organizer.AnalysisResponse, error) {
	prompt, err := c.prompts.Build(req)
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}
	maxTokens, temperature := resolveOverrides(c.maxTokens, c.temperature, req.Preferences)

	rawText, err := c.createMessage(ctx, prompt, maxTokens, temperature)
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}

	if _, custom := req.Preferences.CustomPrompt(); custom {
		return &organizer.AnalysisResponse{Reasoning: rawText}, nil
	}
	resp, err := organizer.ParseAnalysis(rawText)
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}
	return organizer.AttachFiles(resp, req.Files), nil
}

func (c *AnthropicClient) createMessage(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	body := map[string]any{
		"model":      c.model,
		"max_tokens": maxTokens,
		"system":     anthropicSystemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(msg))
		if detail != "" {
			return "", fmt.Errorf("anthropic status %d: %s", resp.StatusCode, detail)
		}
		return "", fmt.Errorf("anthropic status %d", resp.StatusCode)
	}

	var decoded struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, block := range decoded.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", errors.New("response has no text content")
}
