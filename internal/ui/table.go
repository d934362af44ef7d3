package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/chainsim/internal/invoke"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	Right bool // right-align, for numbers
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the table as a string. Cells are padded by hand to exact
// widths; lipgloss Width wraps content that does not fit.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	line := func(cells []string, style func(i int) lipgloss.Style) {
		parts := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(cells) {
				val = cells[j]
			}
			parts[j] = style(j).Render(fit(val, col.Width, col.Right))
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("\n")
	}

	titles := make([]string, len(t.Columns))
	rules := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
		rules[i] = strings.Repeat("─", col.Width)
	}
	line(titles, func(int) lipgloss.Style { return headerStyle })
	line(rules, func(int) lipgloss.Style { return StyleMeta })

	for i, row := range t.Rows {
		style := cellStyle
		if i == t.SelIdx {
			style = StyleSelected
		}
		line(row, func(int) lipgloss.Style { return style })
	}
	return sb.String()
}

// fit pads or truncates s to exactly width runes.
func fit(s string, width int, right bool) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	pad := strings.Repeat(" ", width-len(r))
	if right {
		return pad + s
	}
	return s + pad
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}

// Leaderboard renders gas records cheapest first.
func Leaderboard(records []invoke.GasRecord) *Table {
	t := NewTable([]Column{
		{Title: "#", Width: 3, Right: true},
		{Title: "Function", Width: 20},
		{Title: "Gas used", Width: 10, Right: true},
		{Title: "Tx", Width: 13},
	})
	for i, r := range records {
		t.AddRow(Row{
			strconv.Itoa(i + 1),
			r.Function,
			strconv.FormatUint(r.GasUsed, 10),
			TruncateAddr(r.TxHash),
		})
	}
	return t
}
