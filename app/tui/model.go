// Package tui implements the interactive suggestion review shell. Each
// suggestion can be approved or rejected; the decisions feed back into the
// conversational session as approved/rejected patterns.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/declutter/organizer"
)

// Decision tracks the reviewer's verdict on one suggestion.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionApproved
	DecisionRejected
)

// Result summarizes a finished review.
type Result struct {
	Approved []organizer.Suggestion
	Rejected []organizer.Suggestion
	Aborted  bool
}

// Run reviews the response interactively and returns the reviewer's
// verdicts.
func Run(ctx context.Context, resp *organizer.AnalysisResponse) (Result, error) {
	if resp == nil || len(resp.Suggestions) == 0 {
		return Result{}, fmt.Errorf("nothing to review")
	}
	program := tea.NewProgram(NewModel(resp), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	model, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected final model %T", final)
	}
	return model.Result(), nil
}

// Model implements the Bubble Tea Model interface for suggestion review.
type Model struct {
	reasoning   string
	suggestions []organizer.Suggestion
	decisions   []Decision
	cursor      int

	body   viewport.Model
	width  int
	height int
	ready  bool

	finished bool
	aborted  bool
}

// NewModel builds the review model for one analysis response.
func NewModel(resp *organizer.AnalysisResponse) Model {
	return Model{
		reasoning:   resp.Reasoning,
		suggestions: resp.Suggestions,
		decisions:   make([]Decision, len(resp.Suggestions)),
	}
}

// Result collects the verdicts recorded so far. Pending suggestions are
// treated as approved: the reviewer saw them and chose not to object.
func (m Model) Result() Result {
	result := Result{Aborted: m.aborted}
	if m.aborted {
		return result
	}
	for i, s := range m.suggestions {
		if m.decisions[i] == DecisionRejected {
			result.Rejected = append(result.Rejected, s)
			continue
		}
		result.Approved = append(result.Approved, s)
	}
	return result
}
