package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))

const maxCellWidth = 32

// writeTable prints rows in aligned columns measured in display cells.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}

	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = runewidth.FillRight(h, widths[i])
	}
	if _, err := fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(strings.Join(cells, "  "), " "))); err != nil {
		return err
	}
	for _, row := range rows {
		for i, cell := range row {
			cells[i] = runewidth.FillRight(truncate(cell, widths[i]), widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
