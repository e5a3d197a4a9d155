package main

import "github.com/charmbracelet/lipgloss"

// Status-line styles, narrowed from the TUI's shared palette down to the
// handful of accents a flat command-line tool needs.
var (
	colorAccent = lipgloss.Color("#34D399") // Emerald (success)
	colorMuted  = lipgloss.Color("#626262") // Gray

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)
