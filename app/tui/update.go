package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Init fulfills the Bubble Tea Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies incoming Bubble Tea messages to mutate the Model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	bodyHeight := msg.Height - chromeHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	if !m.ready {
		m.body = viewport.New(msg.Width, bodyHeight)
		m.ready = true
	} else {
		m.body.Width = msg.Width
		m.body.Height = bodyHeight
	}
	m.body.SetContent(m.renderList())
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
	case "y", "a":
		m = m.decide(DecisionApproved)
	case "n", "r":
		m = m.decide(DecisionRejected)
	case "u":
		m.decisions[m.cursor] = DecisionPending
	case "enter":
		m.finished = true
		return m, tea.Quit
	}
	if m.ready {
		m.body.SetContent(m.renderList())
		m.scrollToCursor()
	}
	return m, nil
}

// decide records the verdict for the cursor row and advances to the next
// undecided suggestion.
func (m Model) decide(d Decision) Model {
	m.decisions[m.cursor] = d
	if m.cursor < len(m.suggestions)-1 {
		m.cursor++
	}
	return m
}

func (m *Model) scrollToCursor() {
	if m.cursor < m.body.YOffset {
		m.body.SetYOffset(m.cursor)
	}
	if m.cursor >= m.body.YOffset+m.body.Height {
		m.body.SetYOffset(m.cursor - m.body.Height + 1)
	}
}
