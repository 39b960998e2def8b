package ui

import (
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/rileylov/chaser/internal/chains"
	"github.com/rileylov/chaser/internal/sheet"
)

// sheetChromeRows is the handle and title rows above the panel body.
const sheetChromeRows = 2

// frameMsg drives one animation frame of settle transition id.
type frameMsg struct {
	id uint64
	at time.Time
}

// setStateMsg asks the sheet to move to a state, from a button or key.
type setStateMsg struct {
	state sheet.State
}

// Sheet is the bottom sheet component. It owns the controller, feeds it
// pointer and size events, runs the settle animation on a frame clock and
// draws the panel at the controller's offset, over a backdrop.
type Sheet struct {
	id         string
	ctrl       *sheet.Controller
	drag       *DragHandler
	list       *locationList
	cellHeight float64
	headerRows int
	log        *zap.Logger
	now        func() time.Time

	width  int
	height int

	// ticking is the transition the frame clock is running for.
	ticking uint64
}

// NewSheet builds a sheet around ctrl. headerRows is how many rows above the
// sheet belong to the nav bar.
func NewSheet(ctrl *sheet.Controller, list *locationList, cellHeight float64, headerRows int, log *zap.Logger) *Sheet {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Sheet{
		id:         zone.NewPrefix(),
		ctrl:       ctrl,
		list:       list,
		cellHeight: cellHeight,
		headerRows: headerRows,
		log:        log,
		now:        time.Now,
	}
	s.drag = NewDragHandler(ctrl, s.handleID(), cellHeight, log)
	return s
}

func (s *Sheet) handleID() string { return s.id + "handle" }
func (s *Sheet) toggleID() string { return s.id + "toggle" }

// Controller exposes the sheet's controller.
func (s *Sheet) Controller() *sheet.Controller { return s.ctrl }

// PanelTop is the screen row the panel starts at.
func (s *Sheet) PanelTop() int {
	top := int(math.Round((s.ctrl.Options().ReservedTop + s.ctrl.Offset()) / s.cellHeight))
	return min(max(top, s.headerRows), max(s.height, s.headerRows))
}

// panelRows is how many rows of the panel are on screen.
func (s *Sheet) panelRows() int {
	return max(0, s.height-s.PanelTop())
}

// Teardown drops any open drag without committing it.
func (s *Sheet) Teardown() {
	s.ctrl.Teardown()
}

func (s *Sheet) Init() tea.Cmd {
	return nil
}

func (s *Sheet) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.ctrl.Resize(float64(msg.Height) * s.cellHeight)

	case frameMsg:
		if msg.id != s.ticking {
			// superseded transition
			return s, nil
		}
		if s.ctrl.Frame(msg.at) {
			cmds = append(cmds, s.tick(msg.id))
		} else {
			s.ticking = 0
		}

	case setStateMsg:
		s.ctrl.SetState(msg.state, s.now())

	case tea.BlurMsg:
		if s.drag.Cancel(s.now()) {
			s.log.Debug("drag cancelled by focus loss")
		}

	case tea.MouseMsg:
		if s.drag.HandleMouseEvent(msg, s.now()) {
			break
		}
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft &&
			zone.Get(s.toggleID()).InBounds(msg) {
			s.ctrl.Toggle(s.now())
			break
		}
		_, cmd := s.list.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, s.handleKey(msg))

	default:
		_, cmd := s.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	s.ctrl.Reconcile()
	s.list.SetSize(s.width, s.panelRows()-sheetChromeRows)
	cmds = append(cmds, s.startFrames())
	return s, tea.Batch(cmds...)
}

func (s *Sheet) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" && s.drag.Cancel(s.now()) {
		return nil
	}
	if s.list.Searching() {
		_, cmd := s.list.Update(msg)
		return cmd
	}
	switch msg.String() {
	case "tab":
		s.ctrl.Toggle(s.now())
	case "1":
		s.ctrl.SetState(sheet.Full, s.now())
	case "2":
		s.ctrl.SetState(sheet.Half, s.now())
	case "3":
		s.ctrl.SetState(sheet.Collapsed, s.now())
	default:
		_, cmd := s.list.Update(msg)
		return cmd
	}
	return nil
}

// startFrames starts the frame clock for a newly scheduled transition.
func (s *Sheet) startFrames() tea.Cmd {
	tr, ok := s.ctrl.Settling()
	if !ok || tr.ID == s.ticking {
		return nil
	}
	s.ticking = tr.ID
	return s.tick(tr.ID)
}

func (s *Sheet) tick(id uint64) tea.Cmd {
	return tea.Tick(s.ctrl.Options().FrameInterval(), func(t time.Time) tea.Msg {
		return frameMsg{id: id, at: t}
	})
}

func (s *Sheet) View() string {
	if s.height <= 0 || s.width <= 0 {
		return ""
	}
	top := s.PanelTop()
	lines := make([]string, 0, s.height)
	lines = append(lines, s.backdrop(top-s.headerRows)...)

	if n := s.panelRows(); n > 0 {
		panel := strings.Split(s.panel(), "\n")
		for i := 0; i < n; i++ {
			line := ""
			if i < len(panel) {
				line = panel[i]
			}
			lines = append(lines, fit(panelStyle, s.width, line))
		}
	}
	return strings.Join(lines, "\n")
}

// backdrop fills the rows the panel leaves uncovered with a map placeholder
// centred on the selected location.
func (s *Sheet) backdrop(rows int) []string {
	if rows <= 0 {
		return nil
	}
	out := make([]string, rows)
	caption := "· map ·"
	if loc, ok := s.list.Selected(); ok {
		caption = "◉ " + loc.Name + "  " + chains.FormatCoords(loc.Point())
	}
	for i := range out {
		text := ""
		if i == rows/2 {
			text = caption
		}
		out[i] = fit(backdropStyle.Align(lipgloss.Center), s.width, text)
	}
	return out
}

func (s *Sheet) panel() string {
	style := handleStyle
	if s.ctrl.Dragging() {
		style = handleActiveStyle
	}
	handle := zone.Mark(s.handleID(), style.Width(s.width).Render("━━━━━━"))

	arrow := "▼"
	if s.ctrl.State() == sheet.Collapsed {
		arrow = "▲"
	}
	button := zone.Mark(s.toggleID(), toggleButtonStyle.Render(arrow))
	name := "No chain"
	if s.list.chain != nil {
		name = s.list.chain.Name
	}
	title := panelTitleStyle.Render(name)
	gap := max(1, s.width-lipgloss.Width(title)-lipgloss.Width(button)-1)
	titleRow := lipgloss.JoinHorizontal(lipgloss.Center, title, strings.Repeat(" ", gap), button)

	return lipgloss.JoinVertical(lipgloss.Left, handle, titleRow, s.list.View())
}

// fit renders line on exactly one row of width cells, cutting it if needed.
func fit(style lipgloss.Style, width int, line string) string {
	cut := lipgloss.NewStyle().MaxWidth(width).Render(line)
	return style.Width(width).Render(cut)
}
