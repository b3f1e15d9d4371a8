package organizer

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultFilePreviewLimit bounds how many files the conversational template
// enumerates before summarizing the remainder.
const DefaultFilePreviewLimit = 50

// PromptBuilder renders an AnalysisRequest into provider-agnostic prompt
// text. It is a pure value: building the same request twice yields identical
// text, and nothing here touches the network or filesystem.
type PromptBuilder struct {
	// FilePreviewLimit overrides DefaultFilePreviewLimit when positive.
	FilePreviewLimit int
}

// Build selects the prompt variant for the request. A customPrompt
// preference wins outright and is returned verbatim; an intent preference
// selects the conversational template; everything else gets the standard
// template, which requires at least one file.
func (b PromptBuilder) Build(req AnalysisRequest) (string, error) {
	if custom, ok := req.Preferences.CustomPrompt(); ok {
		return custom, nil
	}
	if intent, ok := req.Preferences.Intent(); ok {
		return b.buildConversational(req, intent), nil
	}
	if len(req.Files) == 0 {
		return "", ErrNoFiles
	}
	return b.buildStandard(req), nil
}

func (b PromptBuilder) buildStandard(req AnalysisRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a file organization assistant. Analyze the files below and suggest a destination for every one of them.\n\n")
	fmt.Fprintf(&sb, "Base directory: %s\n\n", req.BaseDirectory)

	fmt.Fprintf(&sb, "Files to organize (%d):\n", len(req.Files))
	for i, f := range req.Files {
		fmt.Fprintf(&sb, "%d. %s (%s, %s, modified %s)\n",
			i+1, f.Name, displayExtension(f.Extension), FormatBytes(f.Size), f.Modified.Format("2006-01-02"))
	}

	sb.WriteString("\nExisting directory structure:\n")
	if len(req.ExistingStructure) == 0 {
		sb.WriteString("(none provided)\n")
	} else {
		for _, dir := range req.ExistingStructure {
			fmt.Fprintf(&sb, "- %s\n", dir)
		}
	}

	sb.WriteString("\nUser preferences:\n")
	sb.WriteString(serializePreferences(req.Preferences))
	sb.WriteString("\n")

	writeOutputContract(&sb, len(req.Files))
	return sb.String()
}

func (b PromptBuilder) buildConversational(req AnalysisRequest, intent string) string {
	var sb strings.Builder
	sb.WriteString("You are a file organization assistant working through a conversation with the user.\n\n")
	fmt.Fprintf(&sb, "User intent: %s\n", intent)

	if clarifications := req.Preferences.Clarifications(); len(clarifications) > 0 {
		sb.WriteString("\nClarifications provided so far:\n")
		for i, c := range clarifications {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, c)
		}
	}
	if rejected := req.Preferences.RejectedPatterns(); len(rejected) > 0 {
		sb.WriteString("\nPatterns the user rejected (do not repeat these):\n")
		for _, p := range rejected {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}
	if approved := req.Preferences.ApprovedPatterns(); len(approved) > 0 {
		sb.WriteString("\nPatterns the user approved (prefer these):\n")
		for _, p := range approved {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
	}

	limit := b.FilePreviewLimit
	if limit <= 0 {
		limit = DefaultFilePreviewLimit
	}
	fmt.Fprintf(&sb, "\nFiles under discussion (%d):\n", len(req.Files))
	for i, f := range req.Files {
		if i >= limit {
			fmt.Fprintf(&sb, "...and %d more files\n", len(req.Files)-limit)
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, f.Name, FormatBytes(f.Size))
	}

	sb.WriteString("\nRules:\n")
	sb.WriteString("- Normalize folder and file naming: expand informal abbreviations to canonical names, but keep literal multi-letter acronyms as written.\n")
	sb.WriteString("- Apply one consistent organizational pattern per file category; never mix patterns within a category.\n")
	sb.WriteString("- Group files belonging to the same project together even when their types differ.\n")

	writeOutputContract(&sb, len(req.Files))
	return sb.String()
}

// writeOutputContract appends the machine-readable reply contract shared by
// both templated variants.
func writeOutputContract(sb *strings.Builder, fileCount int) {
	sb.WriteString("\nRespond with valid JSON only, no prose outside the object, using exactly this shape:\n")
	sb.WriteString(`{
  "suggestions": [
    {
      "fileName": "example.pdf",
      "suggestedPath": "documents/reports/example.pdf",
      "reason": "why this destination fits",
      "confidence": 0.9,
      "category": "documents"
    }
  ],
  "reasoning": "overall approach",
  "clarificationNeeded": {
    "questions": ["optional question"],
    "reason": "why clarification is needed"
  }
}
`)
	sb.WriteString("\nRequirements:\n")
	fmt.Fprintf(sb, "- Every input file must receive exactly one suggestion: %d files means %d suggestions.\n", fileCount, fileCount)
	sb.WriteString("- Return valid JSON only; do not wrap it in markdown fences.\n")
	sb.WriteString("- Use one consistent organizational pattern per file category.\n")
	sb.WriteString("- Expand informal abbreviations to their canonical names while preserving literal multi-letter acronyms.\n")
	sb.WriteString("- Include clarificationNeeded only when the request is genuinely ambiguous.\n")
}

func serializePreferences(prefs Preferences) string {
	if len(prefs) == 0 {
		return "(none)\n"
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return "(none)\n"
	}
	return string(data) + "\n"
}

func displayExtension(ext string) string {
	if ext == "" {
		return "no extension"
	}
	return ext
}

// FormatBytes renders size using the largest unit in B/KB/MB/GB that keeps
// the scaled value under 1024, with one decimal place.
func FormatBytes(size int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}
