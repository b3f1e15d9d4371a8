package llm

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"

	"github.com/lexcodex/declutter/organizer"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient is the schema-guided variant: the transport itself constrains
// the reply to the analysis schema, so replies are decoded strictly instead
// of going through text-recovery parsing.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	maxTokens   int
	temperature float64
	prompts     organizer.PromptBuilder
}

// NewGeminiClient builds the adapter on top of the official genai client.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := resolveTemperature(cfg)
	return &GeminiClient{
		cli:         cli,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		prompts:     organizer.PromptBuilder{FilePreviewLimit: cfg.FilePreviewLimit},
	}, nil
}

// Name identifies the adapter in errors and telemetry.
func (c *GeminiClient) Name() string { return "gemini" }

// DefaultModel returns the model used when the config leaves it blank.
func (c *GeminiClient) DefaultModel() string { return defaultGeminiModel }

// Analyze implements Provider.
func (c *GeminiClient) Analyze(ctx context.Context, req organizer.AnalysisRequest) (*organizer.AnalysisResponse, error) {
	prompt, err := c.prompts.Build(req)
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}
	maxTokens, temperature := resolveOverrides(c.maxTokens, c.temperature, req.Preferences)

	_, custom := req.Preferences.CustomPrompt()
	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(float32(temperature)),
	}
	if !custom {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = analysisSchema()
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		genCfg,
	)
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, wrapProviderErr(c.Name(), errors.New("no parsed content returned"))
	}
	text := resp.Candidates[0].Content.Parts[0].Text

	if custom {
		return &organizer.AnalysisResponse{Reasoning: text}, nil
	}
	parsed, err := organizer.DecodeAnalysis([]byte(text))
	if err != nil {
		return nil, wrapProviderErr(c.Name(), err)
	}
	return organizer.AttachFiles(parsed, req.Files), nil
}

// analysisSchema constrains generation to the analyze reply contract.
func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fileName":      {Type: genai.TypeString},
						"suggestedPath": {Type: genai.TypeString},
						"reason":        {Type: genai.TypeString},
						"confidence":    {Type: genai.TypeNumber},
						"category":      {Type: genai.TypeString},
					},
					Required: []string{"fileName", "suggestedPath", "reason", "confidence"},
				},
			},
			"reasoning": {Type: genai.TypeString},
			"clarificationNeeded": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"questions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"reason":    {Type: genai.TypeString},
				},
			},
		},
		Required: []string{"suggestions", "reasoning"},
	}
}
