package main

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

// table lays out cells by their display width, so colouring a cell never
// shifts the columns after it.
type table struct {
	header []string
	rows   [][]string
	styles map[int]func(value string) *color.Color
}

func newTable(header ...string) *table {
	return &table{header: header, styles: make(map[int]func(string) *color.Color)}
}

func (t *table) style(col int, pick func(value string) *color.Color) *table {
	t.styles[col] = pick
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) error {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	var b strings.Builder
	t.line(&b, t.header, widths, false)
	for _, row := range t.rows {
		t.line(&b, row, widths, true)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (t *table) line(b *strings.Builder, row []string, widths []int, styled bool) {
	for i, cell := range row {
		text := cell
		if i < len(row)-1 && i < len(widths) {
			text = runewidth.FillRight(cell, widths[i])
		}
		if pick, ok := t.styles[i]; ok && styled {
			text = pick(cell).Sprint(text)
		}
		if i > 0 {
			b.WriteString(columnGap)
		}
		b.WriteString(text)
	}
	b.WriteString("\n")
}

var (
	branchColor = color.New(color.FgCyan)
	commitColor = color.New(color.FgYellow)
	mergeColor  = color.New(color.FgMagenta)
	pushColor   = color.New(color.FgGreen)
)

func fixed(c *color.Color) func(string) *color.Color {
	return func(string) *color.Color { return c }
}

func byEvent(event string) *color.Color {
	if event == "merge" {
		return mergeColor
	}
	return pushColor
}
