package organizer

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNoFiles is returned by the prompt builder when standard mode receives
// an empty file list.
var ErrNoFiles = errors.New("organizer: analysis request contains no files")

// excerptLimit bounds how much raw model output a ParseError carries.
const excerptLimit = 500

// ParseError reports model output from which no usable JSON object could be
// located or reconstructed. Excerpt holds the head of the offending text so
// failures can be diagnosed without logging entire replies.
type ParseError struct {
	Reason  string
	Excerpt string
	Err     error
}

// NewParseError builds a ParseError with a bounded excerpt of raw. The cut
// never splits a multi-byte rune.
func NewParseError(reason, raw string, err error) *ParseError {
	excerpt := raw
	if len(excerpt) > excerptLimit {
		cut := excerptLimit
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut] + "..."
	}
	return &ParseError{Reason: reason, Excerpt: excerpt, Err: err}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse analysis response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse analysis response: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderError is the uniform failure surfaced by every provider adapter.
// Transport and parse failures are wrapped with the provider name attached
// so callers never see SDK or wire-level error shapes.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: analysis failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
