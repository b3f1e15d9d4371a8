package organizer

import "time"

// FileDescriptor identifies one file the caller wants organized. Instances
// are supplied by the scanner (or any host application) and are treated as
// immutable for the lifetime of an analyze call; Name is the identity key
// used when suggestions are matched back to their files.
type FileDescriptor struct {
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
}

// AnalysisRequest carries everything a provider needs for one analyze call.
type AnalysisRequest struct {
	Files             []FileDescriptor
	BaseDirectory     string
	ExistingStructure []string
	Preferences       Preferences
}

// Preferences is the open-ended configuration bag attached to a request.
// A handful of keys are recognized and change prompt or provider behavior;
// everything else is serialized into the standard prompt verbatim.
type Preferences map[string]any

// Recognized preference keys.
const (
	PrefCustomPrompt     = "customPrompt"
	PrefIntent           = "intent"
	PrefClarifications   = "clarifications"
	PrefRejectedPatterns = "rejectedPatterns"
	PrefApprovedPatterns = "approvedPatterns"
	PrefMaxTokens        = "maxTokens"
	PrefTemperature      = "temperature"
)

// CustomPrompt returns the verbatim prompt override when one is set.
func (p Preferences) CustomPrompt() (string, bool) {
	return p.stringValue(PrefCustomPrompt)
}

// Intent returns the conversational-mode intent when one is set.
func (p Preferences) Intent() (string, bool) {
	return p.stringValue(PrefIntent)
}

// Clarifications returns prior clarification answers for conversational mode.
func (p Preferences) Clarifications() []string {
	return p.stringSlice(PrefClarifications)
}

// RejectedPatterns returns organization patterns the user turned down.
func (p Preferences) RejectedPatterns() []string {
	return p.stringSlice(PrefRejectedPatterns)
}

// ApprovedPatterns returns organization patterns the user accepted.
func (p Preferences) ApprovedPatterns() []string {
	return p.stringSlice(PrefApprovedPatterns)
}

// MaxTokens returns the per-request token override when present and positive.
func (p Preferences) MaxTokens() (int, bool) {
	if n, ok := p.intValue(PrefMaxTokens); ok && n > 0 {
		return n, true
	}
	return 0, false
}

// Temperature returns the per-request temperature override when present.
func (p Preferences) Temperature() (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[PrefTemperature].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (p Preferences) stringValue(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	if s, ok := p[key].(string); ok && s != "" {
		return s, true
	}
	return "", false
}

func (p Preferences) intValue(key string) (int, bool) {
	if p == nil {
		return 0, false
	}
	switch v := p[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (p Preferences) stringSlice(key string) []string {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Suggestion is one proposed destination for one file. File stays nil until
// reconciliation resolves it against the request's descriptors; it remains
// nil only when the request carried no files at all.
type Suggestion struct {
	File          *FileDescriptor `json:"file,omitempty"`
	SuggestedPath string          `json:"suggestedPath"`
	Reason        string          `json:"reason"`
	Confidence    float64         `json:"confidence"`
	Category      string          `json:"category,omitempty"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}

// ClarificationRequest is raised by the model when the request is too
// ambiguous to organize confidently.
type ClarificationRequest struct {
	Questions []string `json:"questions"`
	Reason    string   `json:"reason"`
}

// AnalysisResponse is the normalized result of one analyze call.
type AnalysisResponse struct {
	Suggestions   []Suggestion          `json:"suggestions"`
	Reasoning     string                `json:"reasoning"`
	Clarification *ClarificationRequest `json:"clarificationNeeded,omitempty"`
}
