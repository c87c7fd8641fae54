package tui

import "github.com/charmbracelet/lipgloss"

var (
	brandColor  = lipgloss.Color("#2DB682")
	subtleColor = lipgloss.Color("#6C6C6C")
	errorColor  = lipgloss.Color("#E74C3C")
	infoColor   = lipgloss.Color("#3498DB")

	brandStyle   = lipgloss.NewStyle().Foreground(brandColor).Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtleColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	infoStyle    = lipgloss.NewStyle().Foreground(infoColor)
	userStyle    = lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	botStyle     = lipgloss.NewStyle().Foreground(brandColor).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(brandColor)
	cursorStyle  = lipgloss.NewStyle().Foreground(brandColor).Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleColor).
			Padding(0, 1)
	activePanelStyle = panelStyle.BorderForeground(brandColor)
)
