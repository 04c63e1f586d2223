package dashui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/launchdash/internal/binding"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	ds, err := dataset.New("scenario.csv", []model.LaunchRecord{
		{FlightNumber: 1, Site: "siteA", PayloadMassKg: 500, Class: 1, BoosterCategory: "v1", BoosterVersion: "F9 v1.0"},
		{FlightNumber: 2, Site: "siteA", PayloadMassKg: 600, Class: 0, BoosterCategory: "v1", BoosterVersion: "F9 v1.0"},
		{FlightNumber: 3, Site: "siteB", PayloadMassKg: 7000, Class: 1, BoosterCategory: "v2", BoosterVersion: "F9 FT"},
	})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	reg, err := binding.Default(ds)
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	m, err := NewModel(ds, reg, binding.DefaultSelection(ds), nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestNewModelUsesInitialSelection(t *testing.T) {
	m := newTestModel(t)
	want := model.Selection{Site: model.AllSites, Payload: model.PayloadRange{Low: 500, High: 7000}}
	if diff := cmp.Diff(want, m.Selection()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	view := m.View()
	for _, needle := range []string{"Site: < ALL >", "Min: 500", "Max: 7000", "Total Successful Launches by Site", "Payload vs. Launch Outcome for All Sites"} {
		if !strings.Contains(view, needle) {
			t.Fatalf("view missing %q:\n%s", needle, view)
		}
	}
}

func TestNewModelRejectsUnknownSite(t *testing.T) {
	ds, err := dataset.New("x", []model.LaunchRecord{{Site: "siteA", Class: 1}})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	reg, err := binding.Default(ds)
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	sel := binding.DefaultSelection(ds)
	sel.Site = "nowhere"
	if _, err := NewModel(ds, reg, sel, nil); err == nil {
		t.Fatalf("expected error for unknown site")
	}
}

func TestSiteSelectorCycles(t *testing.T) {
	m := newTestModel(t)
	press(m, "right")
	if got := m.Selection().Site; got != "siteA" {
		t.Fatalf("expected siteA, got %q", got)
	}
	if !strings.Contains(m.View(), "Success vs Failed Launches for site siteA") {
		t.Fatalf("proportion figure not refreshed:\n%s", m.View())
	}
	press(m, "left", "left")
	if got := m.Selection().Site; got != "siteB" {
		t.Fatalf("expected wrap to siteB, got %q", got)
	}
	press(m, "a")
	if got := m.Selection().Site; got != model.AllSites {
		t.Fatalf("expected ALL after reset, got %q", got)
	}
}

func TestPayloadHandlesSnapAndClamp(t *testing.T) {
	m := newTestModel(t)
	press(m, "tab", "left")
	if got := m.Selection().Payload.Low; got != 0 {
		t.Fatalf("expected low 0, got %v", got)
	}
	press(m, "left")
	if got := m.Selection().Payload.Low; got != 0 {
		t.Fatalf("expected low clamped at 0, got %v", got)
	}
	press(m, "tab", "right", "right", "right", "right")
	if got := m.Selection().Payload.High; got != model.PayloadSliderMax {
		t.Fatalf("expected high clamped at %d, got %v", model.PayloadSliderMax, got)
	}
	press(m, "r")
	want := model.PayloadRange{Low: 500, High: 7000}
	if diff := cmp.Diff(want, m.Selection().Payload); diff != "" {
		t.Fatalf("range after reset mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadHandlesNeverCross(t *testing.T) {
	m := newTestModel(t)
	press(m, "tab")
	for i := 0; i < 12; i++ {
		press(m, "right")
	}
	p := m.Selection().Payload
	if p.Low != 7000 || p.High != 7000 {
		t.Fatalf("expected low pinned to high, got %+v", p)
	}
	press(m, "tab")
	for i := 0; i < 12; i++ {
		press(m, "left")
	}
	p = m.Selection().Payload
	if p.Low != 7000 || p.High != 7000 {
		t.Fatalf("expected high pinned to low, got %+v", p)
	}
}

func TestPayloadChangeUpdatesRows(t *testing.T) {
	m := newTestModel(t)
	if got := len(m.rowsTable.Rows()); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	press(m, "tab", "tab", "left", "left", "left", "left", "left", "left")
	if got := m.Selection().Payload.High; got != 1000 {
		t.Fatalf("expected high 1000, got %v", got)
	}
	if got := len(m.rowsTable.Rows()); got != 2 {
		t.Fatalf("expected 2 rows in [500,1000], got %d", got)
	}
	if m.summary.Launches != 2 || m.summary.Successes != 1 {
		t.Fatalf("unexpected summary %+v", m.summary)
	}
}

func TestSiteSearch(t *testing.T) {
	m := newTestModel(t)
	press(m, "/", "s", "i", "t", "e", "b", "enter")
	if m.searchMode {
		t.Fatalf("expected search to close")
	}
	if got := m.Selection().Site; got != "siteB" {
		t.Fatalf("expected siteB, got %q", got)
	}
	press(m, "/", "z", "z", "enter")
	if !m.searchMode || m.searchError == "" {
		t.Fatalf("expected search error to keep input open")
	}
	press(m, "esc")
	if m.searchMode {
		t.Fatalf("expected esc to close search")
	}
}

func TestTabsSwitchViews(t *testing.T) {
	m := newTestModel(t)
	press(m, "]")
	if !strings.Contains(m.View(), "F9 FT") {
		t.Fatalf("expected launches table:\n%s", m.View())
	}
	press(m, "]")
	if !strings.Contains(m.View(), "Success Rate by Site") {
		t.Fatalf("expected site rates:\n%s", m.View())
	}
	press(m, "]")
	if m.activeTab != tabCharts {
		t.Fatalf("expected wrap to charts tab, got %d", m.activeTab)
	}
}

func TestStepPayload(t *testing.T) {
	cases := []struct {
		v    float64
		dir  int
		want float64
	}{
		{v: 0, dir: 1, want: 1000},
		{v: 500, dir: 1, want: 1000},
		{v: 500, dir: -1, want: 0},
		{v: 9600, dir: 1, want: 10000},
		{v: 9600, dir: -1, want: 9000},
		{v: 10000, dir: 1, want: 10000},
		{v: 0, dir: -1, want: 0},
		{v: 3000, dir: -1, want: 2000},
	}
	for _, tc := range cases {
		if got := stepPayload(tc.v, tc.dir); got != tc.want {
			t.Fatalf("stepPayload(%v, %d) = %v, want %v", tc.v, tc.dir, got, tc.want)
		}
	}
}

func TestMatchSite(t *testing.T) {
	options := []string{model.AllSites, "CCAFS LC-40", "CCAFS SLC-40", "KSC LC-39A"}
	cases := map[string]string{
		"all":    model.AllSites,
		"ccafs":  "CCAFS LC-40",
		"slc":    "CCAFS SLC-40",
		" ksc ":  "KSC LC-39A",
		"lc-39a": "KSC LC-39A",
	}
	for query, want := range cases {
		got, ok := matchSite(options, query)
		if !ok || got != want {
			t.Fatalf("matchSite(%q) = %q, %v; want %q", query, got, ok, want)
		}
	}
	if _, ok := matchSite(options, ""); ok {
		t.Fatalf("expected empty query to match nothing")
	}
}
