package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/launchdash/internal/model"
)

func TestBuildReport(t *testing.T) {
	ds := wideDataset(t)
	sel := model.Selection{Site: "KSC LC-39A", Payload: model.PayloadRange{Low: 2000, High: 4000}}
	report := BuildReport(ds, sel)
	if report.Selection != sel {
		t.Fatalf("unexpected selection: %+v", report.Selection)
	}
	if diff := cmp.Diff(ProportionView(ds, sel.Site), report.Proportion); diff != "" {
		t.Fatalf("proportion mismatch:\n%s", diff)
	}
	if len(report.Correlation.Rows) != 2 {
		t.Fatalf("expected 2 correlation rows, got %d", len(report.Correlation.Rows))
	}
	want := Summary{Launches: 2, Successes: 1, MinPayload: 2490, MaxPayload: 3000}
	if report.Selected != want {
		t.Fatalf("unexpected summary: %+v", report.Selected)
	}
	if len(report.Sites) != 4 {
		t.Fatalf("expected 4 site rates, got %d", len(report.Sites))
	}
}

func TestRankByRate(t *testing.T) {
	rates := SiteRates(wideDataset(t).Records())
	ranked := RankByRate(rates)
	got := make([]string, len(ranked))
	for i, r := range ranked {
		got[i] = r.Site
	}
	want := []string{"CCAFS SLC-40", "KSC LC-39A", "CCAFS LC-40", "VAFB SLC-4E"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rank mismatch (-want +got):\n%s", diff)
	}
	if rates[0].Site != "CCAFS LC-40" {
		t.Fatalf("RankByRate must not reorder its input")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) || s.SuccessRate() != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}
