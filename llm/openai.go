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
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"

	openAISystemPrompt = "You are an expert file organization assistant. " +
		"Always respond with a single JSON object and nothing else."
)

// OpenAIClient speaks the chat-completions wire format: a messages array
// with a system instruction followed by the rendered prompt.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	prompts     organizer.PromptBuilder
}

// NewOpenAIClient builds the adapter from already-resolved configuration.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai: API key required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
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
	return &OpenAIClient{
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
func (c *OpenAIClient) Name() string { return "openai" }

// DefaultModel returns the model used when the config leaves it blank.
func (c *OpenAIClient) DefaultModel() string { return defaultOpenAIModel }

// Analyze implements Provider.
func (c *OpenAIClient) Analyze(ctx context.Context, req organizer.AnalysisRequest) (*organizer.AnalysisResponse, error) {
	prompt, err := c.prompts.Build(req)
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}
	maxTokens, temperature := resolveOverrides(c.maxTokens, c.temperature, req.Preferences)

	rawText, err := c.complete(ctx, prompt, maxTokens, temperature)
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

func (c *OpenAIClient) complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": openAISystemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
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
			return "", fmt.Errorf("openai status %d: %s", resp.StatusCode, detail)
		}
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("response content is empty")
	}
	return content, nil
}
