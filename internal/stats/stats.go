// Package stats contains the launch filters and aggregations behind the charts.
package stats

import (
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/model"
)

// ProportionView aggregates success counts for the site selector value.
// For AllSites it sums outcome classes per site; for a single site it counts
// records per outcome class. Sites or classes with no records are omitted.
func ProportionView(ds *dataset.Dataset, site string) model.ProportionView {
	view := model.ProportionView{Site: site}
	if site == model.AllSites {
		view.BySite = successesBySite(ds.Records())
		return view
	}
	view.ByClass = countByClass(filterSite(ds.Records(), site))
	return view
}

// CorrelationView returns the records inside the payload range, both ends
// inclusive, restricted to site unless it is AllSites. Row order is kept.
func CorrelationView(ds *dataset.Dataset, site string, payload model.PayloadRange) model.CorrelationView {
	rows := filterPayload(ds.Records(), payload)
	if site != model.AllSites {
		rows = filterSite(rows, site)
	}
	return model.CorrelationView{
		Site:    site,
		Payload: payload,
		Rows:    rows,
	}
}

func successesBySite(records []model.LaunchRecord) []model.SiteCount {
	index := map[string]int{}
	var out []model.SiteCount
	for _, r := range records {
		i, ok := index[r.Site]
		if !ok {
			i = len(out)
			index[r.Site] = i
			out = append(out, model.SiteCount{Site: r.Site})
		}
		out[i].Successes += r.Class
	}
	return out
}

func countByClass(records []model.LaunchRecord) []model.ClassCount {
	var counts [2]int
	for _, r := range records {
		counts[r.Class]++
	}
	var out []model.ClassCount
	for class, n := range counts {
		if n == 0 {
			continue
		}
		out = append(out, model.ClassCount{Class: class, Count: n})
	}
	return out
}

func filterSite(records []model.LaunchRecord, site string) []model.LaunchRecord {
	out := make([]model.LaunchRecord, 0, len(records))
	for _, r := range records {
		if r.Site == site {
			out = append(out, r)
		}
	}
	return out
}

func filterPayload(records []model.LaunchRecord, payload model.PayloadRange) []model.LaunchRecord {
	out := make([]model.LaunchRecord, 0, len(records))
	for _, r := range records {
		if payload.Contains(r.PayloadMassKg) {
			out = append(out, r)
		}
	}
	return out
}
