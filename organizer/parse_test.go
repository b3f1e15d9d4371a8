package organizer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisValidReply(t *testing.T) {
	raw := `Here is my plan:
{
  "suggestions": [
    {"fileName": "a.txt", "suggestedPath": "docs/a.txt", "reason": "text file", "confidence": 0.9, "category": "documents"},
    {"fileName": "b.jpg", "suggestedPath": "pictures/b.jpg", "reason": "image", "confidence": 0.7}
  ],
  "reasoning": "grouped by type"
}`
	resp, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "docs/a.txt", resp.Suggestions[0].SuggestedPath)
	assert.Equal(t, "documents", resp.Suggestions[0].Category)
	assert.InDelta(t, 0.9, resp.Suggestions[0].Confidence, 1e-9)
	assert.Equal(t, "grouped by type", resp.Reasoning)
	assert.Nil(t, resp.Suggestions[0].File)
	assert.Nil(t, resp.Clarification)
}

func TestParseAnalysisClampsConfidence(t *testing.T) {
	raw := `{"suggestions": [
		{"fileName": "a", "suggestedPath": "x/a", "confidence": -0.4},
		{"fileName": "b", "suggestedPath": "x/b", "confidence": 3.2},
		{"fileName": "c", "suggestedPath": "x/c", "confidence": "high"},
		{"fileName": "d", "suggestedPath": "x/d"}
	], "reasoning": "r"}`
	resp, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 4)
	assert.Equal(t, 0.0, resp.Suggestions[0].Confidence)
	assert.Equal(t, 1.0, resp.Suggestions[1].Confidence)
	assert.Equal(t, 0.5, resp.Suggestions[2].Confidence)
	assert.Equal(t, 0.5, resp.Suggestions[3].Confidence)
}

func TestParseAnalysisTruncatedRecovery(t *testing.T) {
	raw := `{"suggestions": [
		{"fileName": "a.txt", "suggestedPath": "docs/a.txt", "reason": "first", "confidence": 0.8},
		{"fileName": "b.txt", "suggestedPath": "docs/b.txt", "reason": "second", "confidence": 0.6},
		{"fileName": "c.txt", "suggestedPath": "do`
	resp, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "docs/a.txt", resp.Suggestions[0].SuggestedPath)
	assert.Equal(t, "docs/b.txt", resp.Suggestions[1].SuggestedPath)
	assert.Equal(t, PartialRecoveryReasoning, resp.Reasoning)
}

func TestParseAnalysisTruncatedBracesInStrings(t *testing.T) {
	raw := `{"suggestions": [
		{"fileName": "a.txt", "suggestedPath": "docs/a.txt", "reason": "braces {inside} a \"string\"", "confidence": 0.8},
		{"fileName": "b.txt", "suggestedPa`
	resp, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, `braces {inside} a "string"`, resp.Suggestions[0].Reason)
}

func TestParseAnalysisTruncatedNothingRecoverable(t *testing.T) {
	raw := `{"suggestions": [{"fileName": "a.txt", "suggestedPa`
	_, err := ParseAnalysis(raw)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseAnalysisNoJSON(t *testing.T) {
	_, err := ParseAnalysis("I cannot help with that.")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Error(), "no JSON object")
}

func TestParseAnalysisMissingSuggestions(t *testing.T) {
	_, err := ParseAnalysis(`{"reasoning": "nothing to do"}`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseAnalysisSuggestionsNotArray(t *testing.T) {
	_, err := ParseAnalysis(`{"suggestions": "nope"}`)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestParseAnalysisExcerptBounded(t *testing.T) {
	raw := "x" + string(make([]byte, 2000))
	_, err := ParseAnalysis(raw)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.LessOrEqual(t, len(parseErr.Excerpt), excerptLimit+3)
}

func TestParseAnalysisDefaultsReasoning(t *testing.T) {
	resp, err := ParseAnalysis(`{"suggestions": []}`)
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, defaultReasoning, resp.Reasoning)
}

func TestParseAnalysisClarificationPassthrough(t *testing.T) {
	raw := `{"suggestions": [], "clarificationNeeded": {"questions": ["Which projects matter?"], "reason": "ambiguous"}}`
	resp, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.NotNil(t, resp.Clarification)
	assert.Equal(t, []string{"Which projects matter?"}, resp.Clarification.Questions)
	assert.Equal(t, "ambiguous", resp.Clarification.Reason)
}

func TestParseAnalysisMetadataPassthrough(t *testing.T) {
	raw := `{"suggestions": [{"fileName": "a", "suggestedPath": "x/a", "metadata": {"tag": "urgent"}}], "reasoning": "r"}`
	resp, err := ParseAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "urgent", resp.Suggestions[0].Metadata["tag"])
}

func TestDecodeAnalysis(t *testing.T) {
	data := []byte(`{"suggestions": [{"fileName": "a", "suggestedPath": "x/a", "confidence": 2.5}], "reasoning": "r"}`)
	resp, err := DecodeAnalysis(data)
	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, 1.0, resp.Suggestions[0].Confidence)
	assert.Equal(t, "r", resp.Reasoning)
}

func TestDecodeAnalysisRejectsSurroundingText(t *testing.T) {
	_, err := DecodeAnalysis([]byte("prose {\"suggestions\": []}"))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestDecodeAnalysisMissingSuggestions(t *testing.T) {
	_, err := DecodeAnalysis([]byte(`{"reasoning": "r"}`))
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestTryRecoverPartialSkipsMalformed(t *testing.T) {
	text := `{"suggestions": [
		{"fileName": "good.txt", "suggestedPath": "docs/good.txt"},
		{"fileName": 42, "suggestedPath": "docs/bad.txt"},
		{"fileName": "tail.txt", "suggestedPath": "docs/tail.txt"},
		{"fileName": "cut.txt", "sugge`
	recovered := tryRecoverPartial(text)
	require.Len(t, recovered, 2)
	assert.Equal(t, "docs/good.txt", recovered[0].SuggestedPath)
	assert.Equal(t, "docs/tail.txt", recovered[1].SuggestedPath)
}

func TestParseAnalysisExcerptKeepsRunesIntact(t *testing.T) {
	// The "x" prefix forces the byte at the cut position into the middle
	// of a two-byte rune.
	raw := "x" + strings.Repeat("é", excerptLimit)
	_, err := ParseAnalysis(raw)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.True(t, utf8.ValidString(parseErr.Excerpt))
	assert.True(t, strings.HasSuffix(parseErr.Excerpt, "..."))
}
