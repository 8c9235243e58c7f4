package tui

import "github.com/charmbracelet/lipgloss"

// 256-color palette; lipgloss degrades it on simpler terminals.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	SpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const (
	SymbolCheck = "✓"
	SymbolCross = "✗"
)
