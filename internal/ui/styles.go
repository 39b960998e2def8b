package ui

import "github.com/charmbracelet/lipgloss"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	muted     = lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#696969"}
	warning   = lipgloss.AdaptiveColor{Light: "#D4522A", Dark: "#FF8C69"}
)

var (
	panelStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#FAFAF5", Dark: "#1E1E1E"})

	handleStyle = lipgloss.NewStyle().
			Foreground(muted).
			Align(lipgloss.Center)

	handleActiveStyle = handleStyle.
				Foreground(highlight).
				Bold(true)

	backdropStyle = lipgloss.NewStyle().
			Foreground(muted)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			PaddingLeft(1)

	toggleButtonStyle = lipgloss.NewStyle().
				Background(highlight).
				Foreground(lipgloss.AdaptiveColor{Light: "#FFF", Dark: "#FFF"}).
				Padding(0, 1)
)
