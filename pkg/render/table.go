package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/survfit/pkg/figure"
	"github.com/matzehuels/survfit/pkg/scale"
)

var (
	tableBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	tableLabel  = lipgloss.NewStyle().Padding(0, 1)
	tableTitle  = lipgloss.NewStyle().Bold(true)
)

// Table renders the risk tables of fig for a terminal, one block per
// table panel. It returns the empty string for figures without tables.
func Table(fig *figure.Figure) string {
	var blocks []string
	for _, p := range fig.Panels() {
		if p.Table == nil {
			continue
		}
		headers := []string{"", ""}
		for _, t := range p.Table.Times {
			headers = append(headers, scale.FormatNumber(t))
		}
		rows := make([][]string, len(p.Table.Rows))
		for i, r := range p.Table.Rows {
			rows[i] = append([]string{r.Block, r.Header}, r.Cells...)
		}
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(tableBorder).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return tableHeader
				case col < 2:
					return tableLabel
				}
				return tableCell
			}).
			Headers(headers...).
			Rows(rows...)
		blocks = append(blocks, tableTitle.Render(p.Name)+"\n"+t.String())
	}
	return strings.Join(blocks, "\n\n")
}
