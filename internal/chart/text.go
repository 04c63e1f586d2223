package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	maxBarWidth         = 40
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	barRune             = '█'
	terminalWidthBackup = 80
	emptyNotice         = "No data for this selection."
)

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
	{name: "red", code: "\x1b[31m"},
}

// RenderText draws spec as terminal text. width is the total available width;
// zero means the width of the attached terminal.
func RenderText(w io.Writer, spec Spec, width, height int, useColor bool) error {
	if width <= 0 {
		width = terminalWidth()
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if spec.Title != "" {
		if _, err := fmt.Fprintln(w, spec.Title); err != nil {
			return err
		}
	}
	if spec.Empty() {
		_, err := fmt.Fprintln(w, emptyNotice)
		return err
	}
	switch spec.Kind {
	case KindPie:
		return renderBars(w, spec, width, useColor)
	case KindScatter:
		return renderScatter(w, spec, width, height, useColor)
	default:
		return fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
}

// ShouldUseColor reports whether ANSI colour should be written to w.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// renderBars draws a pie figure as one proportional bar per slice.
func renderBars(w io.Writer, spec Spec, width int, useColor bool) error {
	total := spec.total()
	labelWidth := 0
	valueWidth := 0
	for _, sl := range spec.Slices {
		labelWidth = max(labelWidth, runewidth.StringWidth(sl.Label))
		valueWidth = max(valueWidth, len(formatValue(sl.Value)))
	}
	// label, space, bar, space, value, space, "(100.0%)"
	barWidth := width - labelWidth - valueWidth - 3 - len("(100.0%)")
	barWidth = min(max(barWidth, 1), maxBarWidth)

	for i, sl := range spec.Slices {
		share := sl.Value / total
		n := int(math.Round(share * float64(barWidth)))
		if n == 0 && sl.Value > 0 {
			n = 1
		}
		bar := strings.Repeat(string(barRune), n) + strings.Repeat(" ", barWidth-n)
		if useColor {
			bar = colorPalette[i%len(colorPalette)].code + bar + colorReset
		}
		line := fmt.Sprintf("%s %s %*s (%5.1f%%)",
			runewidth.FillRight(sl.Label, labelWidth),
			bar,
			valueWidth, formatValue(sl.Value),
			share*100,
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// renderScatter draws a scatter figure as a braille plot, one colour per group.
func renderScatter(w io.Writer, spec Spec, width, height int, useColor bool) error {
	xMin, xMax := xDomain(spec)
	yMin, yMax := yDomain(spec)
	ticks := yTickLabels(spec, yMin, yMax, height)
	axisWidth := 0
	for _, label := range ticks {
		axisWidth = max(axisWidth, runewidth.StringWidth(label))
	}
	plotWidth := PlotWidthFor(width, axisWidth)

	groupIndex := make(map[string]int, len(spec.Groups))
	for i, g := range spec.Groups {
		groupIndex[g] = i
	}
	groupCells := make([][][]uint8, len(spec.Groups))
	for i := range groupCells {
		groupCells[i] = makeCells(height, plotWidth)
	}
	dotsX := plotWidth * 2
	dotsY := height * 4
	for _, p := range spec.Points {
		gi, ok := groupIndex[p.Group]
		if !ok {
			continue
		}
		px := valueToColumn(p.X, xMin, xMax, dotsX)
		py := valueToRow(p.Y, yMin, yMax, dotsY)
		// 2x2 dots so single points stay visible.
		for dx := 0; dx < 2; dx++ {
			for dy := 0; dy < 2; dy++ {
				setBrailleDot(groupCells[gi], min(px+dx, dotsX-1), min(py+dy, dotsY-1))
			}
		}
	}

	if spec.YLabel != "" {
		if _, err := fmt.Fprintf(w, "y: %s\n", spec.YLabel); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(ticks[y], axisWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < plotWidth; x++ {
			mask, colorIdx := composeCell(groupCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxisLine(axisWidth, plotWidth, xMin, xMax, spec.XLabel)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(spec.Groups, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// PlotWidthFor computes the plot area width that fits within totalWidth next
// to a y axis of axisWidth columns.
func PlotWidthFor(totalWidth, axisWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisWidth - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func xDomain(spec Spec) (float64, float64) {
	if spec.XDomain != nil {
		return widenDomain(spec.XDomain.Min, spec.XDomain.Max)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Points {
		lo = math.Min(lo, p.X)
		hi = math.Max(hi, p.X)
	}
	return widenDomain(lo, hi)
}

func yDomain(spec Spec) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range spec.Points {
		lo = math.Min(lo, p.Y)
		hi = math.Max(hi, p.Y)
	}
	for _, t := range spec.YTicks {
		lo = math.Min(lo, t.Value)
		hi = math.Max(hi, t.Value)
	}
	return widenDomain(lo, hi)
}

func widenDomain(lo, hi float64) (float64, float64) {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 1
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if math.Abs(hi-lo) < 1e-9 {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func yTickLabels(spec Spec, yMin, yMax float64, height int) []string {
	labels := make([]string, height)
	ticks := spec.YTicks
	if len(ticks) == 0 {
		ticks = []Tick{{Value: yMax, Label: formatValue(yMax)}, {Value: yMin, Label: formatValue(yMin)}}
	}
	for _, t := range ticks {
		row := valueToRow(t.Value, yMin, yMax, height*4) / 4
		if row >= 0 && row < height {
			labels[row] = t.Label
		}
	}
	return labels
}

func xAxisLine(axisWidth, plotWidth int, xMin, xMax float64, label string) string {
	left := formatValue(xMin)
	right := formatValue(xMax)
	if label != "" {
		right += " " + label
	}
	gap := plotWidth - len(left) - runewidth.StringWidth(right)
	if gap < 1 {
		gap = 1
	}
	return strings.Repeat(" ", axisWidth+runewidth.StringWidth(axisSeparator)) + left + strings.Repeat(" ", gap) + right
}

func renderLegend(groups []string, useColor bool) string {
	parts := make([]string, 0, len(groups))
	marker := brailleFromMask(0xff)
	for i, g := range groups {
		label := fmt.Sprintf("%c %s", marker, g)
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(groupCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range groupCells {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func valueToColumn(v, minVal, maxVal float64, width int) int {
	if width <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	col := int(math.Round(pos * float64(width-2)))
	return min(max(col, 0), width-2)
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-2)))
	return min(max(row, 0), height-2)
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
