package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column alignment for RenderTable.
const (
	AlignLeft  = lipgloss.Left
	AlignRight = lipgloss.Right
)

// RenderTable lays rows out under headers with each column as wide as its
// widest cell. align has one entry per column; missing entries align left.
func RenderTable(headers []string, rows [][]string, align []lipgloss.Position) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	cell := func(i int, s string, style lipgloss.Style) string {
		pos := AlignLeft
		if i < len(align) {
			pos = align[i]
		}
		return style.Width(widths[i]).Align(pos).Render(s)
	}

	lines := make([]string, 0, len(rows)+1)
	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = cell(i, h, BoldStyle)
	}
	lines = append(lines, strings.Join(head, "  "))

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	lines = append(lines, SubtleStyle.Render(strings.Join(rule, "  ")))

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range headers {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = cell(i, v, lipgloss.NewStyle())
		}
		lines = append(lines, strings.Join(cells, "  "))
	}

	return strings.Join(lines, "\n")
}
