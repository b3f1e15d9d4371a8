package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/declutter/organizer"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func chatCompletion(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func testRequest() organizer.AnalysisRequest {
	return organizer.AnalysisRequest{
		Files: []organizer.FileDescriptor{
			{Name: "report.pdf", Extension: ".pdf", Size: 2048, Modified: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
			{Name: "photo.jpg", Extension: ".jpg", Size: 1024, Modified: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)},
		},
		BaseDirectory: "/downloads",
	}
}

func newTestOpenAI(t *testing.T, rt roundTripFunc) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	client.httpClient = &http.Client{Transport: rt}
	return client
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	assert.Error(t, err)
}

func TestOpenAIAnalyze(t *testing.T) {
	reply := `{"suggestions": [
		{"fileName": "report.pdf", "suggestedPath": "documents/report.pdf", "reason": "pdf", "confidence": 0.9, "category": "documents"},
		{"fileName": "photo.jpg", "suggestedPath": "pictures/photo.jpg", "reason": "image", "confidence": 0.8, "category": "pictures"}
	], "reasoning": "by type"}`

	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		assert.Equal(t, "/v1/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		assert.Equal(t, defaultOpenAIModel, payload["model"])
		messages := payload["messages"].([]any)
		require.Len(t, messages, 2)
		system := messages[0].(map[string]any)
		assert.Equal(t, "system", system["role"])
		user := messages[1].(map[string]any)
		assert.Contains(t, user["content"], "report.pdf")

		return jsonResponse(200, chatCompletion(reply))
	})

	resp, err := client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "by type", resp.Reasoning)
	require.NotNil(t, resp.Suggestions[0].File)
	assert.Equal(t, "report.pdf", resp.Suggestions[0].File.Name)
	assert.Equal(t, "photo.jpg", resp.Suggestions[1].File.Name)
}

func TestOpenAIAnalyzeCustomPrompt(t *testing.T) {
	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		user := payload["messages"].([]any)[1].(map[string]any)
		assert.Equal(t, "X", user["content"])
		return jsonResponse(200, chatCompletion("free-form model musings, no JSON"))
	})

	req := testRequest()
	req.Preferences = organizer.Preferences{organizer.PrefCustomPrompt: "X"}
	resp, err := client.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, "free-form model musings, no JSON", resp.Reasoning)
}

func TestOpenAIAnalyzePreferenceOverrides(t *testing.T) {
	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		assert.Equal(t, float64(512), payload["max_tokens"])
		assert.Equal(t, 0.9, payload["temperature"])
		return jsonResponse(200, chatCompletion(`{"suggestions": [], "reasoning": "ok"}`))
	})

	req := testRequest()
	req.Preferences = organizer.Preferences{
		organizer.PrefMaxTokens:   512,
		organizer.PrefTemperature: 0.9,
	}
	_, err := client.Analyze(context.Background(), req)
	require.NoError(t, err)
}

func TestOpenAIAnalyzeTransportError(t *testing.T) {
	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		return jsonResponse(429, `{"error": {"message": "rate limited"}}`)
	})

	_, err := client.Analyze(context.Background(), testRequest())
	var provErr *organizer.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "openai", provErr.Provider)
	assert.Contains(t, provErr.Error(), "rate limited")
}

func TestOpenAIAnalyzeParseError(t *testing.T) {
	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		return jsonResponse(200, chatCompletion("I refuse to answer in JSON."))
	})

	_, err := client.Analyze(context.Background(), testRequest())
	var provErr *organizer.ProviderError
	require.ErrorAs(t, err, &provErr)
	var parseErr *organizer.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestOpenAIAnalyzeEmptyFiles(t *testing.T) {
	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		t.Fatal("transport must not be invoked")
		return nil
	})

	_, err := client.Analyze(context.Background(), organizer.AnalysisRequest{BaseDirectory: "/tmp"})
	var provErr *organizer.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.ErrorIs(t, err, organizer.ErrNoFiles)
}

func TestOpenAIAnalyzeTruncatedReply(t *testing.T) {
	truncated := `{"suggestions": [
		{"fileName": "report.pdf", "suggestedPath": "documents/report.pdf", "reason": "pdf", "confidence": 0.9},
		{"fileName": "photo.jpg", "suggestedPath": "pictu`
	client := newTestOpenAI(t, func(req *http.Request) *http.Response {
		return jsonResponse(200, chatCompletion(truncated))
	})

	resp, err := client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, organizer.PartialRecoveryReasoning, resp.Reasoning)
	require.NotNil(t, resp.Suggestions[0].File)
	assert.Equal(t, "report.pdf", resp.Suggestions[0].File.Name)
}

func TestOpenAIAnalyzeNetworkFailure(t *testing.T) {
	client, err := NewOpenAIClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	client.httpClient = &http.Client{Transport: errorTripper{}}

	_, err = client.Analyze(context.Background(), testRequest())
	var provErr *organizer.ProviderError
	require.ErrorAs(t, err, &provErr)
}

type errorTripper struct{}

func (errorTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestOpenAIExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	client, err := NewOpenAIClient(Config{APIKey: "test-key", Temperature: &zero})
	require.NoError(t, err)
	client.httpClient = &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		assert.Equal(t, 0.0, payload["temperature"])
		return jsonResponse(200, chatCompletion(`{"suggestions": [], "reasoning": "ok"}`))
	})}

	_, err = client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
}
