package stats

import (
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

// Report contains both views and summaries for one selection.
type Report struct {
	Selection   model.Selection
	Proportion  model.ProportionView
	Correlation model.CorrelationView
	Selected    Summary
	Sites       []model.SiteRate
}

// BuildReport evaluates both views for sel.
func BuildReport(ds *dataset.Dataset, sel model.Selection) Report {
	corr := CorrelationView(ds, sel.Site, sel.Payload)
	return Report{
		Selection:   sel,
		Proportion:  ProportionView(ds, sel.Site),
		Correlation: corr,
		Selected:    Summarize(corr.Rows),
		Sites:       SiteRates(ds.Records()),
	}
}
