package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/rileylov/chaser/internal/chains"
)

// listChromeRows is the stats, progress, search, filter and count rows above
// the locations.
const listChromeRows = 5

const saveTimeout = 5 * time.Second

var (
	statsStyle    = lipgloss.NewStyle().PaddingLeft(1)
	visitedStat   = lipgloss.NewStyle().Foreground(special).Bold(true).Render
	remainingStat = lipgloss.NewStyle().Foreground(warning).Bold(true).Render
	completeStyle = lipgloss.NewStyle().Foreground(special).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(muted).PaddingLeft(1)
	emptyStyle    = lipgloss.NewStyle().Foreground(muted).Italic(true).PaddingLeft(2)

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(muted)
	tabActiveStyle = tabStyle.Foreground(highlight).Bold(true).Underline(true)

	listItemStyle   = lipgloss.NewStyle().PaddingLeft(1)
	listCursorStyle = listItemStyle.Background(subtle)
	matchStyle      = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	metaStyle       = lipgloss.NewStyle().Foreground(muted)
	checkMark       = lipgloss.NewStyle().SetString("✓").
			Foreground(special).
			PaddingRight(1).
			String()
	openMark = lipgloss.NewStyle().SetString("○").
			Foreground(muted).
			PaddingRight(1).
			String()

	listDoneStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(muted)
)

// VisitToggler persists visit toggles.
type VisitToggler interface {
	Toggle(ctx context.Context, chain, location string) (bool, error)
}

// visitSavedMsg reports the outcome of a persisted toggle.
type visitSavedMsg struct {
	chain string
	id    string
	want  bool
	got   bool
	err   error
}

type locationList struct {
	id     string
	width  int
	height int

	chain   *chains.Chain
	visited chains.Visited
	filter  chains.Filter
	matches []chains.Match
	cursor  int
	top     int

	search   textinput.Model
	progress progress.Model

	home   chains.Point
	store  VisitToggler
	copy   func(string) error
	status string
	log    *zap.Logger
}

func newLocationList(store VisitToggler, home chains.Point, log *zap.Logger) *locationList {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.Placeholder = "Search locations..."
	ti.Prompt = "⌕ "
	ti.CharLimit = 64

	l := &locationList{
		id:       zone.NewPrefix(),
		visited:  chains.Visited{},
		search:   ti,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		home:     home,
		store:    store,
		copy:     clipboard.WriteAll,
		log:      log,
	}
	return l
}

// SetChain replaces the chain and its visits, keeping the search and filter.
func (l *locationList) SetChain(c *chains.Chain, visited chains.Visited) {
	l.chain = c
	if visited == nil {
		visited = chains.Visited{}
	}
	l.visited = visited.Clone()
	l.refresh()
}

// SetSize sets the area the list may draw in.
func (l *locationList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.progress.Width = max(10, width-32)
	l.search.Width = max(10, width-6)
	l.scroll()
}

// Searching reports whether the search input has focus.
func (l *locationList) Searching() bool {
	return l.search.Focused()
}

// Selected returns the location under the cursor.
func (l *locationList) Selected() (chains.Location, bool) {
	if l.cursor < 0 || l.cursor >= len(l.matches) {
		return chains.Location{}, false
	}
	return l.matches[l.cursor].Location, true
}

// Status is the last message worth showing in the footer.
func (l *locationList) Status() string {
	return l.status
}

func (l *locationList) progressOf() chains.Progress {
	if l.chain == nil {
		return chains.NewProgress(0, 0)
	}
	return chains.NewProgress(l.visited.Count(l.chain.Locations), len(l.chain.Locations))
}

func (l *locationList) refresh() {
	if l.chain == nil {
		l.matches = nil
	} else {
		l.matches = chains.Select(l.chain.Locations, l.visited, l.filter, l.search.Value())
	}
	if l.cursor >= len(l.matches) {
		l.cursor = len(l.matches) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.scroll()
}

func (l *locationList) rows() int {
	return max(0, l.height-listChromeRows)
}

// scroll keeps the cursor inside the visible window.
func (l *locationList) scroll() {
	n := l.rows()
	if l.cursor < l.top {
		l.top = l.cursor
	}
	if n > 0 && l.cursor >= l.top+n {
		l.top = l.cursor - n + 1
	}
	if l.top > max(0, len(l.matches)-n) {
		l.top = max(0, len(l.matches)-n)
	}
}

func (l *locationList) move(delta int) {
	l.cursor += delta
	if l.cursor >= len(l.matches) {
		l.cursor = len(l.matches) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.scroll()
}

func (l *locationList) setVisited(id string, on bool) {
	if on {
		l.visited[id] = true
	} else {
		delete(l.visited, id)
	}
}

// toggle flips a visit straight away and saves it in the background. A
// failed save is rolled back when its result arrives.
func (l *locationList) toggle(id string) tea.Cmd {
	if l.chain == nil {
		return nil
	}
	want := !l.visited[id]
	l.setVisited(id, want)
	l.refresh()
	if l.store == nil {
		return nil
	}
	store, slug := l.store, l.chain.Slug
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		got, err := store.Toggle(ctx, slug, id)
		return visitSavedMsg{chain: slug, id: id, want: want, got: got, err: err}
	}
}

func (l *locationList) saved(msg visitSavedMsg) {
	if l.chain == nil || msg.chain != l.chain.Slug {
		return
	}
	switch {
	case msg.err != nil:
		l.log.Warn("saving visit failed, reverting", zap.String("location", msg.id), zap.Error(msg.err))
		l.setVisited(msg.id, !msg.want)
		l.status = fmt.Sprintf("Couldn't save visit: %v", msg.err)
	case msg.got != msg.want:
		l.log.Debug("visit store disagreed", zap.String("location", msg.id), zap.Bool("visited", msg.got))
		l.setVisited(msg.id, msg.got)
	}
	l.refresh()
}

func (l *locationList) tabID(f chains.Filter) string {
	return l.id + "tab_" + strconv.Itoa(int(f))
}

func (l *locationList) rowID(locID string) string {
	return l.id + "row_" + locID
}

func (l *locationList) Init() tea.Cmd {
	return nil
}

func (l *locationList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case visitSavedMsg:
		l.saved(msg)
		return l, nil

	case tea.MouseMsg:
		return l, l.handleMouse(msg)

	case tea.KeyMsg:
		if l.search.Focused() {
			return l, l.handleSearchKey(msg)
		}
		return l, l.handleKey(msg)
	}

	if l.search.Focused() {
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		return l, cmd
	}
	return l, nil
}

func (l *locationList) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		l.move(-1)
		return nil
	case msg.Button == tea.MouseButtonWheelDown:
		l.move(1)
		return nil
	case msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft:
		return nil
	}

	for _, f := range chains.Filters {
		if zone.Get(l.tabID(f)).InBounds(msg) {
			l.filter = f
			l.refresh()
			return nil
		}
	}
	end := min(len(l.matches), l.top+l.rows())
	for i := l.top; i < end; i++ {
		if zone.Get(l.rowID(l.matches[i].ID)).InBounds(msg) {
			l.cursor = i
			return l.toggle(l.matches[i].ID)
		}
	}
	return nil
}

func (l *locationList) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		l.search.Blur()
		return nil
	}
	before := l.search.Value()
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	if l.search.Value() != before {
		l.cursor, l.top = 0, 0
		l.refresh()
	}
	return cmd
}

func (l *locationList) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		l.move(-1)
	case "down", "j":
		l.move(1)
	case "pgup":
		l.move(-max(1, l.rows()))
	case "pgdown":
		l.move(max(1, l.rows()))
	case " ", "enter":
		if loc, ok := l.Selected(); ok {
			return l.toggle(loc.ID)
		}
	case "f":
		l.filter = l.filter.Next()
		l.refresh()
	case "/":
		return l.search.Focus()
	case "y":
		loc, ok := l.Selected()
		if !ok {
			return nil
		}
		addr := loc.Address + ", " + loc.City
		if err := l.copy(addr); err != nil {
			l.status = fmt.Sprintf("Couldn't write to clipboard: %v", err)
		} else {
			l.status = "Copied " + addr
		}
	}
	return nil
}

func (l *locationList) distance(loc chains.Location) string {
	if l.chain == nil || len(l.chain.Locations) == 0 {
		return ""
	}
	origin := l.home
	if origin.IsZero() {
		origin = l.chain.Locations[0].Point()
	}
	return chains.FormatDistance(chains.Haversine(origin, loc.Point()))
}

func (l *locationList) renderName(m chains.Match, done bool) string {
	if done {
		return listDoneStyle.Render(m.Name)
	}
	if len(m.Highlights) == 0 {
		return m.Name
	}
	hit := make(map[int]bool, len(m.Highlights))
	for _, i := range m.Highlights {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range m.Name {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (l *locationList) renderRow(i int) string {
	m := l.matches[i]
	done := l.visited[m.ID]
	mark := openMark
	if done {
		mark = checkMark
	}
	meta := " · " + m.City
	if d := l.distance(m.Location); d != "" {
		meta += " · " + d
	}
	style := listItemStyle
	if i == l.cursor {
		style = listCursorStyle
	}
	row := mark + l.renderName(m, done) + metaStyle.Render(meta)
	if l.width > 0 {
		return zone.Mark(l.rowID(m.ID), fit(style, l.width, row))
	}
	return zone.Mark(l.rowID(m.ID), style.Render(row))
}

func (l *locationList) View() string {
	p := l.progressOf()

	stats := statsStyle.Render(fmt.Sprintf("%d total · %s visited · %s remaining",
		p.Total, visitedStat(strconv.Itoa(p.Visited)), remainingStat(strconv.Itoa(p.Remaining()))))

	bar := " " + l.progress.ViewAs(p.Ratio()) + fmt.Sprintf(" %d%% · %d of %d locations", p.Percent, p.Visited, p.Total)
	if p.Complete {
		bar = " " + l.progress.ViewAs(1) + " " + completeStyle.Render("All locations visited!")
	}

	tabs := make([]string, 0, len(chains.Filters))
	for _, f := range chains.Filters {
		label := f.String()
		switch f {
		case chains.FilterVisited:
			label += fmt.Sprintf(" (%d)", p.Visited)
		case chains.FilterRemaining:
			label += fmt.Sprintf(" (%d)", p.Remaining())
		}
		style := tabStyle
		if f == l.filter {
			style = tabActiveStyle
		}
		tabs = append(tabs, zone.Mark(l.tabID(f), style.Render(label)))
	}

	count := countStyle.Render(fmt.Sprintf("%d location%s", len(l.matches), plural(len(l.matches))))

	out := []string{
		stats,
		bar,
		" " + l.search.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		count,
	}

	switch {
	case len(l.matches) == 0 && strings.TrimSpace(l.search.Value()) != "":
		out = append(out, emptyStyle.Render("No locations match your search."))
	case len(l.matches) == 0:
		out = append(out, emptyStyle.Render("No locations to show."))
	default:
		end := min(len(l.matches), l.top+l.rows())
		for i := l.top; i < end; i++ {
			out = append(out, l.renderRow(i))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
