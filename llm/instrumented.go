package llm

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexcodex/declutter/organizer"
)

// InstrumentedProvider wraps a Provider and emits telemetry around every
// analyze call.
type InstrumentedProvider struct {
	Inner     Provider
	Telemetry organizer.Telemetry
	Debug     bool
}

// NewInstrumentedProvider decorates inner with telemetry.
func NewInstrumentedProvider(inner Provider, telemetry organizer.Telemetry, debug bool) *InstrumentedProvider {
	return &InstrumentedProvider{Inner: inner, Telemetry: telemetry, Debug: debug}
}

// Name delegates to the wrapped provider.
func (p *InstrumentedProvider) Name() string { return p.Inner.Name() }

// DefaultModel delegates to the wrapped provider.
func (p *InstrumentedProvider) DefaultModel() string { return p.Inner.DefaultModel() }

// Analyze implements Provider.
func (p *InstrumentedProvider) Analyze(ctx context.Context, req organizer.AnalysisRequest) (*organizer.AnalysisResponse, error) {
	p.emitRequest(req)
	started := time.Now()
	resp, err := p.Inner.Analyze(ctx, req)
	p.emitResponse(resp, err, time.Since(started))
	return resp, err
}

func (p *InstrumentedProvider) emitRequest(req organizer.AnalysisRequest) {
	if p == nil || p.Telemetry == nil {
		return
	}
	metadata := map[string]any{
		"mode":       requestMode(req),
		"file_count": len(req.Files),
		"base_dir":   req.BaseDirectory,
	}
	if p.Debug {
		names := make([]string, 0, len(req.Files))
		for _, f := range req.Files {
			names = append(names, f.Name)
		}
		metadata["files"] = names
	}
	p.Telemetry.Emit(organizer.Event{
		Type:      organizer.EventProviderRequest,
		Provider:  p.Inner.Name(),
		Timestamp: time.Now().UTC(),
		Message:   "analysis request",
		Metadata:  metadata,
	})
}

func (p *InstrumentedProvider) emitResponse(resp *organizer.AnalysisResponse, err error, elapsed time.Duration) {
	if p == nil || p.Telemetry == nil {
		return
	}
	metadata := map[string]any{
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if resp != nil {
		metadata["suggestion_count"] = len(resp.Suggestions)
		metadata["reasoning_preview"] = clip(resp.Reasoning, 1024)
		metadata["clarification"] = resp.Clarification != nil
	}
	if err != nil {
		metadata["error"] = err.Error()
	}
	p.Telemetry.Emit(organizer.Event{
		Type:      organizer.EventProviderResponse,
		Provider:  p.Inner.Name(),
		Timestamp: time.Now().UTC(),
		Message:   "analysis response",
		Metadata:  metadata,
	})
	if resp != nil && resp.Reasoning == organizer.PartialRecoveryReasoning {
		p.Telemetry.Emit(organizer.Event{
			Type:      organizer.EventParseRecovered,
			Provider:  p.Inner.Name(),
			Timestamp: time.Now().UTC(),
			Message:   "truncated reply recovered",
			Metadata:  map[string]any{"suggestion_count": len(resp.Suggestions)},
		})
	}
}

// clip bounds preview strings without splitting a multi-byte rune.
func clip(s string, max int) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "...(truncated)"
}
