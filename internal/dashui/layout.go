package dashui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// frame right-pads every line of s to width columns. With height > 0 the
// result is also cut or filled with blank lines to exactly height lines.
func frame(s string, width, height int) string {
	if width <= 0 {
		return s
	}
	var lines []string
	if s != "" || height > 0 {
		lines = strings.Split(s, "\n")
	}
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if gap := width - lipgloss.Width(line); gap > 0 {
			lines[i] = line + strings.Repeat(" ", gap)
		}
	}
	for height > 0 && len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// truncateLine shortens plain text to width display columns. Styled strings
// are returned unchanged when they already fit.
func truncateLine(s string, width int) string {
	switch {
	case width <= 0 || lipgloss.Width(s) <= width:
		return s
	case width <= 3:
		return runewidth.Truncate(s, width, "")
	default:
		return runewidth.Truncate(s, width, "...")
	}
}
