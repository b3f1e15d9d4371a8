package runtime

import (
	"context"
	"log"

	"github.com/lexcodex/declutter/llm"
	"github.com/lexcodex/declutter/organizer"
	"github.com/lexcodex/declutter/persistence"
)

// Runtime bundles the provider, session store, and telemetry the CLI
// commands share. One Runtime serves one invocation; Close releases every
// handle it opened.
type Runtime struct {
	Config    Config
	Provider  llm.Provider
	Sessions  *persistence.SQLiteSessionStore
	Telemetry organizer.Telemetry

	trace *organizer.JSONFileTelemetry
}

// New wires a runtime from normalized configuration.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	var sinks []organizer.Telemetry
	var trace *organizer.JSONFileTelemetry
	if cfg.TracePath != "" {
		var err error
		trace, err = organizer.NewJSONFileTelemetry(cfg.TracePath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, trace)
	}
	if cfg.DebugLLM {
		sinks = append(sinks, organizer.LoggerTelemetry{Logger: log.Default()})
	}
	var telemetry organizer.Telemetry = organizer.MultiplexTelemetry{Sinks: sinks}

	provider, err := llm.New(ctx, cfg.Provider, llm.Config{
		APIKey:           cfg.APIKey(),
		BaseURL:          cfg.BaseURL,
		Model:            cfg.Model,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		Timeout:          cfg.Timeout,
		FilePreviewLimit: cfg.FilePreviewLimit,
	})
	if err != nil {
		if trace != nil {
			trace.Close()
		}
		return nil, err
	}

	sessions, err := persistence.NewSQLiteSessionStore(cfg.SessionDBPath)
	if err != nil {
		if trace != nil {
			trace.Close()
		}
		return nil, err
	}

	return &Runtime{
		Config:    cfg,
		Provider:  llm.NewInstrumentedProvider(provider, telemetry, cfg.DebugLLM),
		Sessions:  sessions,
		Telemetry: telemetry,
		trace:     trace,
	}, nil
}

// Close releases the session store and trace file.
func (r *Runtime) Close() error {
	var firstErr error
	if r.Sessions != nil {
		if err := r.Sessions.Close(); err != nil {
			firstErr = err
		}
	}
	if r.trace != nil {
		if err := r.trace.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
