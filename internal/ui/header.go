// Copyright (c) Liam Stanley <liam@liam.sh>. All rights reserved. Use of
// this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/rileylov/chaser/internal/sheet"
)

var (
	headerStyle = lipgloss.NewStyle().
			Background(subtle).
			Foreground(lipgloss.AdaptiveColor{Light: "#333", Dark: "#FFF"}).
			Height(1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			Background(subtle).
			PaddingLeft(1)

	headerButtonStyle = lipgloss.NewStyle().
				Background(highlight).
				Foreground(lipgloss.AdaptiveColor{Light: "#FFF", Dark: "#FFF"}).
				Margin(0, 1).
				Padding(0, 1)

	headerButtonActiveStyle = headerButtonStyle.
				Background(special).
				Bold(true)
)

// header is the nav bar. Its buttons move the sheet between states.
type header struct {
	id     string
	width  int
	height int
	title  string
	active sheet.State
}

func newHeader(title string) *header {
	return &header{
		id:     zone.NewPrefix(),
		height: 1,
		title:  title,
		active: sheet.Half,
	}
}

func (h *header) Init() tea.Cmd {
	return nil
}

func (h *header) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return h, nil
		}
		for _, s := range sheet.States {
			if zone.Get(h.getButtonID(s)).InBounds(msg) {
				return h, func() tea.Msg { return setStateMsg{state: s} }
			}
		}
	}
	return h, nil
}

func (h *header) View() string {
	var buttonViews []string
	for _, s := range sheet.States {
		style := headerButtonStyle
		if s == h.active {
			style = headerButtonActiveStyle
		}
		label := strconv.Itoa(int(s)+1) + " " + s.String()
		buttonViews = append(buttonViews, zone.Mark(h.getButtonID(s), style.Render(label)))
	}
	buttonsSection := lipgloss.JoinHorizontal(lipgloss.Center, buttonViews...)
	buttonsWidth := lipgloss.Width(buttonsSection)
	// Compute how much room is available for the title accounting for
	// header padding (left+right = 2) and a space between title and buttons.
	maxTitleWidth := h.width - buttonsWidth - 2
	if maxTitleWidth < 0 {
		maxTitleWidth = 0
	}
	// Truncate the title with an ellipsis if it won't fit.
	titleText := h.title
	if lipgloss.Width(titleText) > maxTitleWidth {
		runes := []rune(titleText)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > maxTitleWidth {
			runes = runes[:len(runes)-1]
		}
		if maxTitleWidth > 0 {
			titleText = string(runes) + "…"
		} else {
			titleText = ""
		}
	}
	title := titleStyle.Render(titleText)
	titleWidth := lipgloss.Width(title)
	spacingWidth := h.width - titleWidth - buttonsWidth
	if spacingWidth < 0 {
		spacingWidth = 0
	}
	spacing := lipgloss.NewStyle().Background(subtle).Width(spacingWidth).Render("")
	content := lipgloss.JoinHorizontal(lipgloss.Center, title, spacing, buttonsSection)
	return headerStyle.Width(h.width).MaxWidth(h.width).Render(content)
}

func (h *header) getButtonID(s sheet.State) string {
	return h.id + "button_" + s.String()
}
