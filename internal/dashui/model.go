// Package dashui provides the Bubble Tea launch dashboard.
package dashui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/launchdash/internal/binding"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/stats"
)

const (
	tabCharts = iota
	tabRows
	tabSites
)

const (
	plotHeight    = 10
	fallbackWidth = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	controlStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	focusedCtrlStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Underline(true)
	sliderTrackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	sliderActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cardStyle         = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea dashboard.
type Model struct {
	ds      *dataset.Dataset
	session *binding.Session
	logger  *zap.Logger

	options []string
	focus   int

	// Rendered text per output, refreshed only for outputs a change touched.
	figures map[binding.Output]string
	rows    model.CorrelationView
	summary stats.Summary
	errMsg  string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	rowsTable table.Model

	searchMode  bool
	searchInput textinput.Model
	searchError string

	width  int
	height int
}

// NewModel starts a binding session for initial and constructs the dashboard.
func NewModel(ds *dataset.Dataset, reg *binding.Registry, initial model.Selection, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if initial.Site != model.AllSites && !ds.HasSite(initial.Site) {
		return nil, fmt.Errorf("unknown launch site %q", initial.Site)
	}
	session, updates, err := reg.NewSession(initial)
	if err != nil {
		return nil, err
	}
	m := &Model{
		ds:      ds,
		session: session,
		logger:  logger,
		options: ds.SiteOptions(),
		figures: map[binding.Output]string{},
		tabs:    []string{"Charts", "Launches", "Sites"},
	}
	m.initViewports()
	m.initRowsTable()
	m.initSearchInput()
	m.apply(updates)
	m.renderTabContents()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.rerenderAll()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.searchMode {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.focus = cycleIndex(m.focus, 1, focusCount)
			return m, nil
		case "shift+tab":
			m.focus = cycleIndex(m.focus, -1, focusCount)
			return m, nil
		case "left", "h":
			m.adjustFocused(-1)
			return m, nil
		case "right", "l":
			m.adjustFocused(1)
			return m, nil
		case "a":
			m.setSite(model.AllSites)
			return m, nil
		case "r":
			m.setPayload(m.ds.PayloadBounds())
			return m, nil
		case "[":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "]":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startSearch()
		case "g", "home":
			if m.activeTab == tabRows {
				m.rowsTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRows {
				m.rowsTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabRows {
				var cmd tea.Cmd
				m.rowsTable, cmd = m.rowsTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := frame(m.renderHeader(), m.width, headerHeight)
	body := frame(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := frame(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Selection returns the current input values.
func (m *Model) Selection() model.Selection {
	return m.session.Selection()
}

func (m *Model) adjustFocused(dir int) {
	sel := m.session.Selection()
	switch m.focus {
	case focusSite:
		idx := indexOf(m.options, sel.Site)
		m.setSite(m.options[cycleIndex(idx, dir, len(m.options))])
	case focusLow, focusHigh:
		m.setPayload(adjustRange(sel.Payload, m.focus, dir))
	}
}

func (m *Model) setSite(site string) {
	updates, err := m.session.SetSite(site)
	m.handle(updates, err, zap.String("site", site))
}

func (m *Model) setPayload(p model.PayloadRange) {
	updates, err := m.session.SetPayloadRange(p)
	m.handle(updates, err, zap.Float64("low", p.Low), zap.Float64("high", p.High))
}

func (m *Model) handle(updates []binding.Update, err error, fields ...zap.Field) {
	if err != nil {
		m.errMsg = err.Error()
		m.logger.Error("recompute failed", append(fields, zap.Error(err))...)
		return
	}
	m.errMsg = ""
	if len(updates) == 0 {
		return
	}
	outputs := make([]string, len(updates))
	for i, u := range updates {
		outputs[i] = string(u.Output)
	}
	m.logger.Debug("selection changed", append(fields, zap.Strings("outputs", outputs))...)
	m.apply(updates)
	m.renderTabContents()
}

// apply renders the replaced figures and refreshes the views derived from the
// correlation selection.
func (m *Model) apply(updates []binding.Update) {
	width := m.contentWidth()
	for _, u := range updates {
		m.figures[u.Output] = renderFigure(u.Figure, width)
		if u.Output == binding.OutputCorrelation {
			m.refreshRows()
		}
	}
}

func (m *Model) rerenderAll() {
	width := m.contentWidth()
	for out := range m.figures {
		if spec, ok := m.session.Figure(out); ok {
			m.figures[out] = renderFigure(spec, width)
		}
	}
	m.renderTabContents()
}

func (m *Model) refreshRows() {
	sel := m.session.Selection()
	m.rows = stats.CorrelationView(m.ds, sel.Site, sel.Payload)
	m.summary = stats.Summarize(m.rows.Rows)
	m.rowsTable.SetRows(buildRows(m.rows.Rows))
	m.rowsTable.GotoTop()
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return fallbackWidth
	}
	return m.width
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initRowsTable() {
	m.rowsTable = table.New(
		table.WithColumns(rowColumns()),
		table.WithFocused(true),
		table.WithStyles(rowsTableStyles()),
	)
}

func (m *Model) initSearchInput() {
	input := textinput.New()
	input.Prompt = "Site: "
	input.Placeholder = "name or prefix"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.searchInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 2
	footerHeight = 1
	if m.searchMode || m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.rowsTable.SetWidth(m.width)
	m.rowsTable.SetHeight(max(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.searchInput.Prompt)
	m.searchInput.Width = max(10, m.width-promptWidth-2)
}

func (m *Model) moveTab(delta int) {
	m.activeTab = cycleIndex(m.activeTab, delta, len(m.tabs))
	if m.activeTab == tabRows {
		m.rowsTable.Focus()
	} else {
		m.rowsTable.Blur()
	}
}

func (m *Model) startSearch() (tea.Model, tea.Cmd) {
	m.searchMode = true
	m.searchError = ""
	m.searchInput.SetValue("")
	m.updateLayout()
	return m, m.searchInput.Focus()
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endSearch()
		return m, nil
	case tea.KeyEnter:
		site, ok := matchSite(m.options, m.searchInput.Value())
		if !ok {
			m.searchError = fmt.Sprintf("no site matches %q", strings.TrimSpace(m.searchInput.Value()))
			return m, nil
		}
		m.endSearch()
		m.focus = focusSite
		m.setSite(site)
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) endSearch() {
	m.searchMode = false
	m.searchError = ""
	m.searchInput.Blur()
	m.updateLayout()
}

// matchSite picks the first option equal to query, then the first one it
// prefixes, then the first one containing it. Matching ignores case.
func matchSite(options []string, query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	for _, pass := range []func(string) bool{
		func(s string) bool { return s == q },
		func(s string) bool { return strings.HasPrefix(s, q) },
		func(s string) bool { return strings.Contains(s, q) },
	} {
		for _, opt := range options {
			if pass(strings.ToLower(opt)) {
				return opt, true
			}
		}
	}
	return "", false
}
