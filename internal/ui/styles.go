package ui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title     lipgloss.Style
	Cursor    lipgloss.Style
	Directory lipgloss.Style
	File      lipgloss.Style
	Selected  lipgloss.Style
	Partial   lipgloss.Style
	Status    lipgloss.Style
	Message   lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Cursor:    lipgloss.NewStyle().Reverse(true),
		Directory: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		File:      lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Partial:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Message:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true),
	}
}
