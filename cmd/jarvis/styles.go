package main

import "github.com/charmbracelet/lipgloss"

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))            // magenta
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))            // gray
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))            // red
)
