package binding

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

func scenarioDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("scenario", []model.LaunchRecord{
		{Site: "siteA", PayloadMassKg: 500, Class: 1, BoosterCategory: "v1"},
		{Site: "siteA", PayloadMassKg: 600, Class: 0, BoosterCategory: "v1"},
		{Site: "siteB", PayloadMassKg: 7000, Class: 1, BoosterCategory: "v2"},
	})
	if err != nil {
		t.Fatalf("new dataset: %v", err)
	}
	return ds
}

// countingRegistry wraps the default bindings and counts compute calls per output.
func countingRegistry(t *testing.T, ds *dataset.Dataset) (*Registry, map[Output]int) {
	t.Helper()
	base, err := Default(ds)
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	calls := map[Output]int{}
	r := NewRegistry()
	for _, out := range base.Outputs() {
		inputs, _ := base.Inputs(out)
		out := out
		err := r.Register(Binding{
			Output: out,
			Inputs: inputs,
			Compute: func(sel model.Selection) (chart.Spec, error) {
				calls[out]++
				return base.Evaluate(out, sel)
			},
		})
		if err != nil {
			t.Fatalf("register %s: %v", out, err)
		}
	}
	return r, calls
}

func updatedOutputs(updates []Update) []Output {
	out := make([]Output, len(updates))
	for i, u := range updates {
		out[i] = u.Output
	}
	return out
}

func TestRegisterRejectsInvalidBindings(t *testing.T) {
	compute := func(model.Selection) (chart.Spec, error) { return chart.Spec{}, nil }
	r := NewRegistry()
	if err := r.Register(Binding{Output: "a", Compute: compute}); err == nil {
		t.Fatalf("expected error for binding without inputs")
	}
	if err := r.Register(Binding{Inputs: []Input{InputSite}, Compute: compute}); err == nil {
		t.Fatalf("expected error for binding without output")
	}
	if err := r.Register(Binding{Output: "a", Inputs: []Input{InputSite}}); err == nil {
		t.Fatalf("expected error for binding without compute")
	}
	if err := r.Register(Binding{Output: "a", Inputs: []Input{InputSite}, Compute: compute}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(Binding{Output: "a", Inputs: []Input{InputPayload}, Compute: compute}); err == nil {
		t.Fatalf("expected error for duplicate output")
	}
}

func TestDependents(t *testing.T) {
	r, err := Default(scenarioDataset(t))
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if diff := cmp.Diff([]Output{OutputProportion, OutputCorrelation}, r.Dependents(InputSite)); diff != "" {
		t.Fatalf("site dependents mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Output{OutputCorrelation}, r.Dependents(InputPayload)); diff != "" {
		t.Fatalf("payload dependents mismatch (-want +got):\n%s", diff)
	}
	if got := r.Dependents("unknown"); len(got) != 0 {
		t.Fatalf("expected no dependents, got %v", got)
	}
}

func TestEvaluateUnknownOutput(t *testing.T) {
	r, err := Default(scenarioDataset(t))
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := r.Evaluate("nope", DefaultSelection(scenarioDataset(t))); !errors.Is(err, ErrUnknownOutput) {
		t.Fatalf("expected ErrUnknownOutput, got %v", err)
	}
}

func TestNewSessionComputesEveryOutput(t *testing.T) {
	ds := scenarioDataset(t)
	r, calls := countingRegistry(t, ds)
	sess, updates, err := r.NewSession(DefaultSelection(ds))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if diff := cmp.Diff([]Output{OutputProportion, OutputCorrelation}, updatedOutputs(updates)); diff != "" {
		t.Fatalf("initial outputs mismatch (-want +got):\n%s", diff)
	}
	if calls[OutputProportion] != 1 || calls[OutputCorrelation] != 1 {
		t.Fatalf("expected one call per output, got %v", calls)
	}
	want := model.Selection{Site: model.AllSites, Payload: model.PayloadRange{Low: 500, High: 7000}}
	if diff := cmp.Diff(want, sess.Selection()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	pie, ok := sess.Figure(OutputProportion)
	if !ok {
		t.Fatalf("expected proportion figure")
	}
	wantSlices := []chart.Slice{{Label: "siteA", Value: 1}, {Label: "siteB", Value: 1}}
	if diff := cmp.Diff(wantSlices, pie.Slices); diff != "" {
		t.Fatalf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadChangeRecomputesOnlyCorrelation(t *testing.T) {
	ds := scenarioDataset(t)
	r, calls := countingRegistry(t, ds)
	sess, _, err := r.NewSession(DefaultSelection(ds))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	before, _ := sess.Figure(OutputProportion)

	updates, err := sess.SetPayloadRange(model.PayloadRange{Low: 0, High: 1000})
	if err != nil {
		t.Fatalf("set payload: %v", err)
	}
	if diff := cmp.Diff([]Output{OutputCorrelation}, updatedOutputs(updates)); diff != "" {
		t.Fatalf("updated outputs mismatch (-want +got):\n%s", diff)
	}
	if calls[OutputProportion] != 1 {
		t.Fatalf("proportion recomputed on payload change: %d calls", calls[OutputProportion])
	}
	after, _ := sess.Figure(OutputProportion)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("proportion figure changed (-before +after):\n%s", diff)
	}
	scatter, _ := sess.Figure(OutputCorrelation)
	if len(scatter.Points) != 2 {
		t.Fatalf("expected 2 points in [0,1000], got %d", len(scatter.Points))
	}
}

func TestSiteChangeRecomputesBoth(t *testing.T) {
	ds := scenarioDataset(t)
	r, calls := countingRegistry(t, ds)
	sess, _, err := r.NewSession(DefaultSelection(ds))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	updates, err := sess.SetSite("siteA")
	if err != nil {
		t.Fatalf("set site: %v", err)
	}
	if len(updates) != 2 || calls[OutputProportion] != 2 || calls[OutputCorrelation] != 2 {
		t.Fatalf("expected both outputs recomputed, got %v / %v", updatedOutputs(updates), calls)
	}
	pie, _ := sess.Figure(OutputProportion)
	if pie.Title != "Success vs Failed Launches for site siteA" {
		t.Fatalf("unexpected title %q", pie.Title)
	}
	wantSlices := []chart.Slice{{Label: "Failure (0)", Value: 1}, {Label: "Success (1)", Value: 1}}
	if diff := cmp.Diff(wantSlices, pie.Slices); diff != "" {
		t.Fatalf("slices mismatch (-want +got):\n%s", diff)
	}
}

func TestUnchangedInputTriggersNothing(t *testing.T) {
	ds := scenarioDataset(t)
	r, calls := countingRegistry(t, ds)
	sess, _, err := r.NewSession(DefaultSelection(ds))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	updates, err := sess.SetSite(model.AllSites)
	if err != nil || len(updates) != 0 {
		t.Fatalf("expected no updates, got %v (err %v)", updates, err)
	}
	updates, err = sess.SetPayloadRange(ds.PayloadBounds())
	if err != nil || len(updates) != 0 {
		t.Fatalf("expected no updates, got %v (err %v)", updates, err)
	}
	if calls[OutputProportion] != 1 || calls[OutputCorrelation] != 1 {
		t.Fatalf("unexpected recomputation: %v", calls)
	}
}

func TestLastWriteWins(t *testing.T) {
	ds := scenarioDataset(t)
	r, err := Default(ds)
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	sess, _, err := r.NewSession(DefaultSelection(ds))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for _, p := range []model.PayloadRange{{Low: 0, High: 0}, {Low: 0, High: 10000}, {Low: 6000, High: 8000}} {
		if _, err := sess.SetPayloadRange(p); err != nil {
			t.Fatalf("set payload: %v", err)
		}
	}
	scatter, _ := sess.Figure(OutputCorrelation)
	want, err := r.Evaluate(OutputCorrelation, model.Selection{Site: model.AllSites, Payload: model.PayloadRange{Low: 6000, High: 8000}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if diff := cmp.Diff(want, scatter); diff != "" {
		t.Fatalf("figure mismatch (-want +got):\n%s", diff)
	}
	if len(scatter.Points) != 1 || scatter.Points[0].X != 7000 {
		t.Fatalf("expected the siteB point only, got %+v", scatter.Points)
	}
}

func TestFailedComputeKeepsState(t *testing.T) {
	fail := errors.New("boom")
	r := NewRegistry()
	err := r.Register(Binding{
		Output: "out",
		Inputs: []Input{InputSite},
		Compute: func(sel model.Selection) (chart.Spec, error) {
			if sel.Site == "bad" {
				return chart.Spec{}, fail
			}
			return chart.Pie(sel.Site, nil), nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	sess, _, err := r.NewSession(model.Selection{Site: model.AllSites})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := sess.SetSite("bad"); !errors.Is(err, fail) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if sess.Selection().Site != model.AllSites {
		t.Fatalf("selection changed after failed compute: %+v", sess.Selection())
	}
	fig, _ := sess.Figure("out")
	if fig.Title != model.AllSites {
		t.Fatalf("figure replaced after failed compute: %q", fig.Title)
	}
}

func TestCorrelationFigure(t *testing.T) {
	view := model.CorrelationView{
		Site:    model.AllSites,
		Payload: model.PayloadRange{Low: 0, High: 10000},
		Rows: []model.LaunchRecord{
			{Site: "a", PayloadMassKg: 500, Class: 1, BoosterCategory: "FT", BoosterVersion: "F9 FT"},
			{Site: "a", PayloadMassKg: 900, Class: 0},
		},
	}
	spec := CorrelationFigure(view)
	if spec.Kind != chart.KindScatter || spec.Title != "Payload vs. Launch Outcome for All Sites" {
		t.Fatalf("unexpected figure header: %+v", spec)
	}
	if diff := cmp.Diff([]string{"FT", "unknown"}, spec.Groups); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	if spec.XDomain == nil || spec.XDomain.Max != 10000 {
		t.Fatalf("expected x domain from payload range, got %+v", spec.XDomain)
	}
	if spec.Points[0].Label != "F9 FT" || spec.Points[1].Y != 0 {
		t.Fatalf("unexpected points: %+v", spec.Points)
	}
	single := CorrelationFigure(model.CorrelationView{Site: "KSC LC-39A"})
	if single.Title != "Payload vs. Launch Outcome for site KSC LC-39A" || !single.Empty() {
		t.Fatalf("unexpected single-site figure: %+v", single)
	}
}
