// Package format renders archbits results as terminal tables, Markdown or
// JSON.
package format

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
	JSON                 // One JSON document
)

// ParseMode maps "table", "markdown"/"md" and "json" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "table", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	case "json":
		return JSON, nil
	}
	return ASCII, fmt.Errorf("unknown output format %q (want table, markdown or json)", s)
}

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// TableBuilder collects rows and renders them in the Mode set at creation.
type TableBuilder interface {
	Header(cols ...string)
	Row(vals ...any)
	// Align sets the alignment of a 1-based column.
	Align(column int, a ColumnAlign)
	String() string
}

// NewTable returns a TableBuilder for m. JSON is rendered as ASCII; JSON
// output does not go through tables.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()
	if m != Markdown {
		w.SetStyle(table.StyleLight)
	}
	return &prettyAdapter{writer: w, mode: m}
}

type prettyAdapter struct {
	writer  table.Writer
	mode    Mode
	columns []table.ColumnConfig
}

func (a *prettyAdapter) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	a.writer.AppendHeader(row)
}

func (a *prettyAdapter) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	a.writer.AppendRow(row)
}

func (a *prettyAdapter) Align(column int, al ColumnAlign) {
	a.columns = append(a.columns, table.ColumnConfig{Number: column, Align: toTextAlign(al)})
	a.writer.SetColumnConfigs(a.columns)
}

func (a *prettyAdapter) String() string {
	if a.mode == Markdown {
		return a.writer.RenderMarkdown()
	}
	return a.writer.Render()
}

func toTextAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
