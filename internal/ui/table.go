package ui

import (
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row ...string) {
	builder.rows = append(builder.rows, row)
}

// Len returns the number of rows added.
func (builder *TableBuilder) Len() int {
	return len(builder.rows)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as columns separated by two spaces.
// Widths account for ANSI escapes and double-width runes.
func FormatTable(headers []string, rows [][]string) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, normalizeRow(headers))
	for _, row := range rows {
		all = append(all, normalizeRow(row))
	}

	widths := make([]int, len(headers))
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	var builder strings.Builder
	for _, row := range all {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			padding := 0
			if i < len(widths) {
				padding = widths[i] - displayWidth(cell)
			}
			builder.WriteString(strings.Repeat(" ", padding+2))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// TruncateTableCell limits a cell to the table's maximum width, keeping
// escape sequences intact.
func TruncateTableCell(value string) string {
	return Truncate(normalizeTableCell(value), tableCellMaxWidth)
}

// Truncate shortens value to at most width visible columns, ending with an
// ellipsis when anything was cut.
func Truncate(value string, width int) string {
	if displayWidth(value) <= width {
		return value
	}
	if width <= len(tableCellEllipsis) {
		return tableCellEllipsis[:max(width, 0)]
	}
	return truncate.StringWithTail(value, uint(width), tableCellEllipsis)
}

func displayWidth(value string) int {
	return ansi.PrintableRuneWidth(value)
}

// PadRight pads value with spaces to width visible columns.
func PadRight(value string, width int) string {
	gap := width - displayWidth(value)
	if gap <= 0 {
		return value
	}
	return value + strings.Repeat(" ", gap)
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = normalizeTableCell(cell)
	}
	return out
}

func normalizeTableCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
