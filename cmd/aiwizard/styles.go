package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for terminal output.
var (
	// Banner.
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("5")). // magenta
			Foreground(lipgloss.Color("5")).
			Padding(1, 4).
			Align(lipgloss.Center)
	bannerTitleStyle = lipgloss.NewStyle().Bold(true)

	// Generation output.
	borderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // blue
	promptLabelStyle = lipgloss.NewStyle().Bold(true)
	promptTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray

	// Status lines.
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	welcomeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta

	// General utility styles.
	boldStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray/dim
)
