package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileylov/chaser/internal/chains"
	"github.com/rileylov/chaser/internal/sheet"
)

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var snapCmd = &cobra.Command{
	Use:   "snap [viewport-px]",
	Short: "Print the snap points for a viewport height",
	Long: `Print the offset of each sheet state for a viewport height in pixels.
Without an argument the height of a 50 row terminal is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		opts, err := cfg.SheetOptions()
		if err != nil {
			return err
		}
		viewport := 50 * cfg.Sheet.CellHeight
		if len(args) == 1 {
			viewport, err = strconv.ParseFloat(args[0], 64)
			if err != nil || viewport < 0 || math.IsInf(viewport, 0) {
				return fmt.Errorf("viewport must be a non-negative number of pixels, got %q", args[0])
			}
		}
		g := sheet.Geometry{ViewportHeight: viewport, ReservedTop: opts.ReservedTop}
		fmt.Fprintln(cmd.OutOrStdout(), snapTable(g, opts, cfg.Sheet.CellHeight))
		return nil
	},
}

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "List the stored visits of the chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		chain, err := loadChain(cfg.Data.Chain)
		if err != nil {
			return err
		}
		store, err := chains.OpenVisitStore(cmd.Context(), cfg.Data.Database, nil)
		if err != nil {
			return err
		}
		defer store.Close()

		visits, err := store.Visits(cmd.Context(), chain.Slug)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), visitsTable(chain, visits))
		return nil
	},
}

// snapTable renders the resolved snap points of g. Row is the terminal row
// the panel top lands on for a cell height of cellHeight.
func snapTable(g sheet.Geometry, opts sheet.Options, cellHeight float64) string {
	points := sheet.Resolve(g, opts)
	rows := make([]table.Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, table.Row{
			p.State.String(),
			strconv.FormatFloat(p.Offset, 'f', 1, 64),
			strconv.FormatFloat(g.PanelHeight()-p.Offset, 'f', 1, 64),
			strconv.Itoa(int(math.Round((g.ReservedTop + p.Offset) / cellHeight))),
		})
	}
	columns := []table.Column{
		{Title: "State", Width: 10},
		{Title: "Offset px", Width: 10},
		{Title: "Visible px", Width: 10},
		{Title: "Row", Width: 5},
	}
	return renderTable(columns, rows)
}

func visitsTable(chain *chains.Chain, visits []chains.Visit) string {
	rows := make([]table.Row, 0, len(visits))
	for _, v := range visits {
		name := v.Location
		if loc, ok := chain.Location(v.Location); ok {
			name = loc.Name + ", " + loc.City
		}
		rows = append(rows, table.Row{name, v.VisitedAt.Local().Format("2006-01-02 15:04")})
	}
	columns := []table.Column{
		{Title: "Location", Width: 40},
		{Title: "Visited", Width: 18},
	}
	p := chains.NewProgress(len(visits), len(chain.Locations))
	return renderTable(columns, rows) + fmt.Sprintf("\n%s: %d of %d visited (%d%%)", chain.Name, p.Visited, p.Total, p.Percent)
}

func renderTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return baseStyle.Render(t.View())
}
