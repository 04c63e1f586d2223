package dashui

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/launchdash/internal/binding"
	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/stats"
)

const sliderWidth = 20

func renderFigure(spec chart.Spec, width int) string {
	var buf bytes.Buffer
	if err := chart.RenderText(&buf, spec, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render %s: %v", spec.Title, err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.contentWidth()
	parts := []string{
		renderSummaryCards(m.summary, width),
		m.figures[binding.OutputProportion],
		m.figures[binding.OutputCorrelation],
	}
	m.viewports[tabCharts].SetContent(strings.Join(parts, "\n\n"))

	var buf bytes.Buffer
	if err := stats.RenderSiteRates(&buf, stats.SiteRates(m.ds.Records())); err != nil {
		m.viewports[tabSites].SetContent(fmt.Sprintf("Failed to render sites: %v", err))
	} else {
		m.viewports[tabSites].SetContent(strings.TrimRight(buf.String(), "\n"))
	}
}

func renderSummaryCards(s stats.Summary, width int) string {
	payload := "-"
	if s.Launches > 0 {
		payload = fmt.Sprintf("%.0f-%.0f kg", s.MinPayload, s.MaxPayload)
	}
	cards := []string{
		metricCard("Launches", strconv.Itoa(s.Launches)),
		metricCard("Successes", strconv.Itoa(s.Successes)),
		metricCard("Success rate", fmt.Sprintf("%.1f%%", s.SuccessRate()*100)),
		metricCard("Payload", payload),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := frame(m.renderTabs(), m.width, 0)
	sel := m.session.Selection()
	site := m.renderControl(focusSite, fmt.Sprintf("Site: < %s >", sel.Site))
	low := m.renderControl(focusLow, fmt.Sprintf("Min: %.0f", sel.Payload.Low))
	high := m.renderControl(focusHigh, fmt.Sprintf("Max: %.0f", sel.Payload.High))
	controls := site + "   " + low + " " + renderSlider(sel.Payload, sliderWidth) + " " + high + " kg"
	source := headerStyle.Render(truncateLine(fmt.Sprintf("Data: %s (%d launches)", m.ds.Source(), m.ds.Len()), m.width))
	return tabs + "\n" + frame(controls, m.width, 0) + "\n" + frame(source, m.width, 0)
}

func (m *Model) renderControl(focus int, label string) string {
	if m.focus == focus {
		return focusedCtrlStyle.Render(label)
	}
	return controlStyle.Render(label)
}

// renderSlider draws the selected range over the slider domain.
func renderSlider(p model.PayloadRange, width int) string {
	if width <= 0 {
		return ""
	}
	span := float64(model.PayloadSliderMax - model.PayloadSliderMin)
	pos := func(v float64) int {
		c := int(math.Round((clampPayload(v) - model.PayloadSliderMin) / span * float64(width-1)))
		return min(max(c, 0), width-1)
	}
	lo, hi := pos(p.Low), pos(p.High)
	var b strings.Builder
	b.WriteString(sliderTrackStyle.Render("["))
	for i := 0; i < width; i++ {
		switch {
		case i == lo || i == hi:
			b.WriteString(sliderActiveStyle.Render("●"))
		case i > lo && i < hi:
			b.WriteString(sliderActiveStyle.Render("━"))
		default:
			b.WriteString(sliderTrackStyle.Render("─"))
		}
	}
	b.WriteString(sliderTrackStyle.Render("]"))
	return b.String()
}

func (m *Model) renderHelp() string {
	help := "[" + focusNames[m.focus] + "]  Focus: tab  Adjust: left/right  All sites: a  Reset range: r  Find site: /  View: [ ]  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderFooter() string {
	if m.searchMode {
		line := m.searchInput.View()
		if m.searchError != "" {
			line += "  " + errorStyle.Render(m.searchError)
		}
		return line + "\n" + headerStyle.Render("enter: select  esc: cancel")
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabRows {
		if len(m.rows.Rows) == 0 {
			return frame("No launches in selection.", m.width, height)
		}
		return frame(tableMutedStyle.Render(m.rowsTable.View()), m.width, height)
	}
	return frame(m.viewports[m.activeTab].View(), m.width, height)
}

func rowColumns() []table.Column {
	return []table.Column{
		{Title: "Flight", Width: 6},
		{Title: "Site", Width: 14},
		{Title: "Payload (kg)", Width: 12},
		{Title: "Outcome", Width: 8},
		{Title: "Booster", Width: 18},
		{Title: "Category", Width: 8},
	}
}

func buildRows(records []model.LaunchRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		flight := "-"
		if r.FlightNumber > 0 {
			flight = strconv.Itoa(r.FlightNumber)
		}
		rows = append(rows, table.Row{
			flight,
			runewidth.Truncate(r.Site, 14, "…"),
			fmt.Sprintf("%.1f", r.PayloadMassKg),
			stats.OutcomeLabel(r.Class),
			runewidth.Truncate(r.BoosterVersion, 18, "…"),
			r.BoosterCategory,
		})
	}
	return rows
}

func rowsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
