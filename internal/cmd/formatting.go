package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("12"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	footerStyle = lipgloss.NewStyle().Bold(true)
)

type Table struct {
	ColumnWidths map[int]int
	Rows         [][]string
	Footer       string
}

func NewTable() *Table {
	return &Table{
		ColumnWidths: map[int]int{},
		Rows:         [][]string{},
	}
}

func (t *Table) AddRow(row []string) {
	t.updateColumnWidths(row)
	t.Rows = append(t.Rows, row)
}

func (t *Table) SetFooter(footer string) {
	t.Footer = footer
}

// Print writes the table to w. Styling is only applied when styled is set,
// so that piped output stays plain.
func (t *Table) Print(w io.Writer, styled bool) {
	for rownum, row := range t.Rows {
		cells := make([]string, 0, len(row))
		for i, cell := range row {
			pad := strings.Repeat(" ", t.ColumnWidths[i]-len(cell))
			cells = append(cells, t.styleCell(rownum, i, cell, styled)+pad)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	if t.Footer != "" {
		footer := t.Footer
		if styled {
			footer = footerStyle.Render(footer)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, footer)
	}
}

// Private

func (t *Table) styleCell(rownum, column int, cell string, styled bool) string {
	switch {
	case !styled:
		return cell
	case rownum == 0:
		return headerStyle.Render(cell)
	case column == 0:
		return keyStyle.Render(cell)
	default:
		return cell
	}
}

func (t *Table) updateColumnWidths(row []string) {
	for i, cell := range row {
		if len(cell) > t.ColumnWidths[i] {
			t.ColumnWidths[i] = len(cell)
		}
	}
}
