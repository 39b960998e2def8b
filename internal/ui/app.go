package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/rileylov/chaser/internal/chains"
	"github.com/rileylov/chaser/internal/sheet"
)

// Options configures the App.
type Options struct {
	Sheet      sheet.Options
	CellHeight float64
	// Store persists visits; nil keeps them in memory.
	Store VisitToggler
	// Home is the origin for distances; zero uses the chain's first location.
	Home  chains.Point
	Debug bool
	Log   *zap.Logger
}

// ChainLoadedMsg replaces the chain on screen, as sent by the file watcher.
type ChainLoadedMsg struct {
	Chain   *chains.Chain
	Visited chains.Visited
	Err     error
}

// App is the root model: nav bar, sheet over the map backdrop, status line.
type App struct {
	height int
	width  int
	header *header
	footer *footer
	sheet  *Sheet
	log    *zap.Logger
}

// New builds the root model showing chain.
func New(chain *chains.Chain, visited chains.Visited, o Options) (*App, error) {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.CellHeight <= 0 {
		return nil, fmt.Errorf("cell height must be positive, got %v", o.CellHeight)
	}
	ctrl, err := sheet.New(o.Sheet, o.Log.Named("sheet"))
	if err != nil {
		return nil, err
	}

	list := newLocationList(o.Store, o.Home, o.Log.Named("list"))
	if chain != nil {
		list.SetChain(chain, visited)
	}

	a := &App{
		header: newHeader(title(chain)),
		footer: newFooter(o.Debug),
		sheet:  NewSheet(ctrl, list, o.CellHeight, 1, o.Log),
		log:    o.Log,
	}
	a.header.active = ctrl.State()
	return a, nil
}

func title(c *chains.Chain) string {
	if c == nil {
		return "chaser"
	}
	return "chaser · " + c.Name
}

// Sheet exposes the sheet component.
func (a *App) Sheet() *Sheet { return a.sheet }

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) isInitialized() bool {
	return a.height != 0 && a.width != 0
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !a.isInitialized() {
		switch msg.(type) {
		case tea.WindowSizeMsg, ChainLoadedMsg:
		default:
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+e":
			zone.SetEnabled(!zone.Enabled())
			return a, nil
		case "ctrl+c":
			return a, a.quit()
		case "q":
			if !a.sheet.list.Searching() {
				return a, a.quit()
			}
		}
		_, cmd = a.sheet.Update(msg)

	case tea.WindowSizeMsg:
		a.height = msg.Height
		a.width = msg.Width
		cmd = a.resize(msg)

	case ChainLoadedMsg:
		if msg.Err != nil {
			a.sheet.list.status = fmt.Sprintf("Reloading chain failed: %v", msg.Err)
			break
		}
		a.sheet.list.SetChain(msg.Chain, msg.Visited)
		a.sheet.list.status = ""
		a.header.title = title(msg.Chain)
		a.log.Info("chain loaded", zap.String("chain", msg.Chain.Slug))

	case tea.MouseMsg:
		var hcmd tea.Cmd
		if !a.sheet.Controller().Captured() {
			_, hcmd = a.header.Update(msg)
		}
		_, cmd = a.sheet.Update(msg)
		cmd = tea.Batch(hcmd, cmd)

	default:
		_, cmd = a.sheet.Update(msg)
	}

	a.header.active = a.sheet.Controller().State()
	a.footer.observe(a.sheet)
	return a, cmd
}

// resize lays the screen out: header on top, footer at the bottom and the
// sheet's viewport in between, starting at the top of the screen so pointer
// rows need no translation.
func (a *App) resize(msg tea.WindowSizeMsg) tea.Cmd {
	a.header.Update(msg)
	headerH := lipgloss.Height(a.header.View())
	a.footer.Update(msg)
	footerH := lipgloss.Height(a.footer.View())

	a.sheet.headerRows = headerH
	viewport := msg
	viewport.Height = max(headerH, msg.Height-footerH)
	_, cmd := a.sheet.Update(viewport)
	return cmd
}

func (a *App) quit() tea.Cmd {
	a.sheet.Teardown()
	return tea.Quit
}

func (a *App) View() string {
	if !a.isInitialized() {
		return ""
	}
	parts := []string{a.header.View()}
	if body := a.sheet.View(); body != "" {
		parts = append(parts, body)
	}
	parts = append(parts, a.footer.View())
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
