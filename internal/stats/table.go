package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// textTable lays rows out in space-separated columns sized to the widest
// cell of each column. Missing cells render as blanks.
type textTable struct {
	headers []string
	rows    [][]string
	right   map[int]bool
}

func newTextTable(headers []string, right map[int]bool) *textTable {
	return &textTable{headers: headers, right: right}
}

func (t *textTable) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *textTable) lines() []string {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.rows)+1)
	if len(t.headers) > 0 {
		out = append(out, t.line(t.headers, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t *textTable) widths() []int {
	var widths []int
	grow := func(cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	grow(t.headers)
	for _, row := range t.rows {
		grow(row)
	}
	return widths
}

func (t *textTable) line(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		gap := strings.Repeat(" ", max(0, width-runewidth.StringWidth(cell)))
		if t.right[i] {
			parts[i] = gap + cell
		} else {
			parts[i] = cell + gap
		}
	}
	return strings.Join(parts, " ")
}

func formatTable(headers []string, rows [][]string, right map[int]bool) []string {
	t := newTextTable(headers, right)
	for _, row := range rows {
		t.add(row...)
	}
	return t.lines()
}
