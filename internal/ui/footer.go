// Copyright (c) Liam Stanley <liam@liam.sh>. All rights reserved. Use of
// this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/rileylov/chaser/internal/sheet"
)

var (
	footerStyle = lipgloss.NewStyle().
			Background(subtle).
			Foreground(lipgloss.AdaptiveColor{Light: "#666", Dark: "#AAA"}).
			Height(1)

	debugStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#999", Dark: "#666"})

	statusStyle = lipgloss.NewStyle().
			Foreground(warning)
)

// footer is the status line: the last message, or the sheet's live state.
type footer struct {
	width  int
	height int
	debug  bool

	state     sheet.State
	transform sheet.Transform
	dragging  bool
	status    string
}

func newFooter(debug bool) *footer {
	return &footer{
		height: 1,
		debug:  debug,
	}
}

// observe copies what the footer shows from the sheet.
func (f *footer) observe(s *Sheet) {
	c := s.Controller()
	f.state = c.State()
	f.transform = c.Transform()
	f.dragging = c.Dragging()
	f.status = s.list.Status()
}

func (f *footer) Init() tea.Cmd {
	return nil
}

func (f *footer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	}
	return f, nil
}

func (f *footer) View() string {
	mouse := "mouse on"
	if !zone.Enabled() {
		mouse = "mouse off"
	}
	var content string
	switch {
	case f.status != "" && !f.debug:
		content = statusStyle.Render(f.status)
	case f.debug:
		drag := ""
		if f.dragging {
			drag = " dragging |"
		}
		content = debugStyle.Render(fmt.Sprintf("%s | offset %.1fpx | %s |%s %s | ctrl+e=mouse",
			f.state, f.transform.Offset, f.transform.Transition, drag, mouse))
	default:
		content = debugStyle.Render(fmt.Sprintf("%s | tab toggle | / search | f filter | space visit | y copy | q quit | %s",
			f.state, mouse))
	}
	return footerStyle.Width(f.width).MaxWidth(f.width).Render(content)
}
