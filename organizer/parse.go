package organizer

import (
	"encoding/json"
	"strings"
)

// PartialRecoveryReasoning marks responses rebuilt from a truncated reply.
// Callers can compare against it to detect degraded results.
const PartialRecoveryReasoning = "Response was truncated; recovered partial suggestions."

// defaultReasoning is used when the model omits a reasoning string.
const defaultReasoning = "No reasoning provided"

// wireSuggestion mirrors one element of the suggestions array as the model
// writes it. Confidence is decoded loosely because models routinely emit
// strings or drop the field entirely.
type wireSuggestion struct {
	FileName      string         `json:"fileName"`
	SuggestedPath string         `json:"suggestedPath"`
	Reason        string         `json:"reason"`
	Confidence    any            `json:"confidence"`
	Category      string         `json:"category"`
	Metadata      map[string]any `json:"metadata"`
}

type wireAnalysis struct {
	Suggestions   *[]wireSuggestion     `json:"suggestions"`
	Reasoning     string                `json:"reasoning"`
	Clarification *ClarificationRequest `json:"clarificationNeeded"`
}

// ParseAnalysis turns raw model output into an AnalysisResponse. The reply
// is located as the greedy first-{ through last-} span; replies that stop
// before the closing brace go through truncation recovery first. File fields
// are left nil here; AttachFiles resolves them afterwards.
func ParseAnalysis(raw string) (*AnalysisResponse, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 {
		return nil, NewParseError("no JSON object found", raw, nil)
	}

	if !strings.HasSuffix(strings.TrimSpace(raw), "}") {
		if recovered := tryRecoverPartial(raw); len(recovered) > 0 {
			return &AnalysisResponse{
				Suggestions: convertSuggestions(recovered),
				Reasoning:   PartialRecoveryReasoning,
			}, nil
		}
	}
	if end < start {
		return nil, NewParseError("truncated response with no recoverable suggestions", raw, nil)
	}

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return nil, NewParseError("invalid JSON object", raw, err)
	}
	if wire.Suggestions == nil {
		return nil, NewParseError("response has no suggestions array", raw, nil)
	}

	return buildResponse(wire), nil
}

// DecodeAnalysis decodes an already schema-validated reply. Unlike
// ParseAnalysis it neither hunts for a JSON span nor attempts truncation
// recovery: structured transports guarantee a well-formed object, so any
// decode failure is terminal.
func DecodeAnalysis(data []byte) (*AnalysisResponse, error) {
	var wire wireAnalysis
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, NewParseError("invalid structured response", string(data), err)
	}
	if wire.Suggestions == nil {
		return nil, NewParseError("structured response has no suggestions array", string(data), nil)
	}
	return buildResponse(wire), nil
}

func buildResponse(wire wireAnalysis) *AnalysisResponse {
	reasoning := strings.TrimSpace(wire.Reasoning)
	if reasoning == "" {
		reasoning = defaultReasoning
	}
	return &AnalysisResponse{
		Suggestions:   convertSuggestions(*wire.Suggestions),
		Reasoning:     reasoning,
		Clarification: wire.Clarification,
	}
}

// tryRecoverPartial scans truncated output for complete per-suggestion
// objects: balanced {...} spans whose first key is fileName. Each candidate
// is parsed independently and malformed ones are skipped, so a reply cut
// off mid-array still yields every suggestion that finished serializing.
// The heuristic lives behind this one function so it can be swapped or
// tested without touching the primary parse path.
func tryRecoverPartial(text string) []wireSuggestion {
	var recovered []wireSuggestion
	idx := 0
	for {
		open := strings.Index(text[idx:], "{")
		if open < 0 {
			break
		}
		open += idx
		rest := strings.TrimLeft(text[open+1:], " \t\r\n")
		if !strings.HasPrefix(rest, `"fileName"`) {
			idx = open + 1
			continue
		}
		closing := matchingBrace(text, open)
		if closing < 0 {
			break
		}
		var ws wireSuggestion
		if err := json.Unmarshal([]byte(text[open:closing+1]), &ws); err == nil && ws.SuggestedPath != "" {
			recovered = append(recovered, ws)
		}
		idx = closing + 1
	}
	return recovered
}

// matchingBrace returns the index of the brace closing the object opened at
// open, or -1 when the text ends first. String literals and escapes are
// honored so braces inside reasons do not confuse the scan.
func matchingBrace(text string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func convertSuggestions(wire []wireSuggestion) []Suggestion {
	out := make([]Suggestion, 0, len(wire))
	for _, ws := range wire {
		out = append(out, Suggestion{
			SuggestedPath: ws.SuggestedPath,
			Reason:        ws.Reason,
			Confidence:    clampConfidence(ws.Confidence),
			Category:      ws.Category,
			Metadata:      ws.Metadata,
		})
	}
	return out
}

// clampConfidence maps whatever the model emitted into [0,1]. Missing and
// non-numeric values become 0.5 rather than failing the whole suggestion.
func clampConfidence(v any) float64 {
	f, ok := v.(float64)
	if !ok {
		return 0.5
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
