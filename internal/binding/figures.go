package binding

import (
	"fmt"

	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/stats"
)

// Axis labels of the correlation figure.
const (
	PayloadAxisLabel = "Payload Mass (kg)"
	ClassAxisLabel   = "class"
)

// Default registers the two dashboard figures for ds: the proportion figure
// bound to the site input and the correlation figure bound to both inputs.
func Default(ds *dataset.Dataset) (*Registry, error) {
	r := NewRegistry()
	err := r.Register(Binding{
		Output: OutputProportion,
		Inputs: []Input{InputSite},
		Compute: func(sel model.Selection) (chart.Spec, error) {
			return ProportionFigure(stats.ProportionView(ds, sel.Site)), nil
		},
	})
	if err != nil {
		return nil, err
	}
	err = r.Register(Binding{
		Output: OutputCorrelation,
		Inputs: []Input{InputSite, InputPayload},
		Compute: func(sel model.Selection) (chart.Spec, error) {
			return CorrelationFigure(stats.CorrelationView(ds, sel.Site, sel.Payload)), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultSelection is the initial dashboard state: every site and the
// observed payload bounds of ds.
func DefaultSelection(ds *dataset.Dataset) model.Selection {
	return model.Selection{
		Site:    model.AllSites,
		Payload: ds.PayloadBounds(),
	}
}

// ProportionTitle returns the proportion figure title for site.
func ProportionTitle(site string) string {
	if site == model.AllSites {
		return "Total Successful Launches by Site"
	}
	return "Success vs Failed Launches for site " + site
}

// CorrelationTitle returns the correlation figure title for site.
func CorrelationTitle(site string) string {
	if site == model.AllSites {
		return "Payload vs. Launch Outcome for All Sites"
	}
	return "Payload vs. Launch Outcome for site " + site
}

// ProportionFigure turns a proportion view into a pie figure.
func ProportionFigure(view model.ProportionView) chart.Spec {
	var slices []chart.Slice
	if view.Site == model.AllSites {
		for _, c := range view.BySite {
			slices = append(slices, chart.Slice{Label: c.Site, Value: float64(c.Successes)})
		}
	} else {
		for _, c := range view.ByClass {
			slices = append(slices, chart.Slice{Label: ClassLabel(c.Class), Value: float64(c.Count)})
		}
	}
	return chart.Pie(ProportionTitle(view.Site), slices)
}

// CorrelationFigure turns a correlation view into a scatter figure with
// payload on x, outcome class on y and one group per booster category.
func CorrelationFigure(view model.CorrelationView) chart.Spec {
	points := make([]chart.Point, 0, len(view.Rows))
	for _, r := range view.Rows {
		group := r.BoosterCategory
		if group == "" {
			group = "unknown"
		}
		points = append(points, chart.Point{
			X:     r.PayloadMassKg,
			Y:     float64(r.Class),
			Group: group,
			Label: r.BoosterVersion,
		})
	}
	spec := chart.Scatter(CorrelationTitle(view.Site), PayloadAxisLabel, ClassAxisLabel, points)
	spec.XDomain = &chart.Domain{Min: view.Payload.Low, Max: view.Payload.High}
	spec.YTicks = []chart.Tick{
		{Value: model.ClassFailure, Label: "0"},
		{Value: model.ClassSuccess, Label: "1"},
	}
	return spec
}

// ClassLabel names an outcome class for legends.
func ClassLabel(class int) string {
	return fmt.Sprintf("%s (%d)", stats.OutcomeLabel(class), class)
}
