package main

import "github.com/charmbracelet/lipgloss"

const (
	red     = "#FF6188"
	orange  = "#FC9867"
	green   = "#A9DC76"
	cyan    = "#78DCE8"
	magenta = "#AB9DF2"
	comment = "#727072"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(green))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(red)).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(orange))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(cyan))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(comment))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(magenta))
)
