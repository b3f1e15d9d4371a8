package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorSuccess   = lipgloss.Color("42")
	colorError     = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	reasoningStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	approvedStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	rejectedStyle = lipgloss.NewStyle().
			Foreground(colorError)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	pathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)
