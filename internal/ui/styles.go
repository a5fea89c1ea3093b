package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	buttonStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	disabledButtonStyle = lipgloss.NewStyle().Faint(true)
	cursorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	completedStyle      = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("243"))
	faintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
