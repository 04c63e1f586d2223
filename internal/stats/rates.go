package stats

import (
	"sort"

	"github.com/verte-zerg/launchdash/internal/model"
)

// Summary describes a set of launch records.
type Summary struct {
	Launches   int
	Successes  int
	MinPayload float64
	MaxPayload float64
}

// SuccessRate returns the success ratio in [0,1].
func (s Summary) SuccessRate() float64 {
	if s.Launches == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Launches)
}

// Summarize counts launches and successes and finds the payload span.
func Summarize(records []model.LaunchRecord) Summary {
	var s Summary
	for i, r := range records {
		s.Launches++
		s.Successes += r.Class
		if i == 0 || r.PayloadMassKg < s.MinPayload {
			s.MinPayload = r.PayloadMassKg
		}
		if i == 0 || r.PayloadMassKg > s.MaxPayload {
			s.MaxPayload = r.PayloadMassKg
		}
	}
	return s
}

// SiteRates computes launches and successes per site in first-appearance order.
func SiteRates(records []model.LaunchRecord) []model.SiteRate {
	index := map[string]int{}
	var out []model.SiteRate
	for _, r := range records {
		i, ok := index[r.Site]
		if !ok {
			i = len(out)
			index[r.Site] = i
			out = append(out, model.SiteRate{Site: r.Site})
		}
		out[i].Launches++
		out[i].Successes += r.Class
	}
	return out
}

// RankByRate orders site rates by success ratio, then launches, then name.
func RankByRate(rates []model.SiteRate) []model.SiteRate {
	out := append([]model.SiteRate(nil), rates...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Rate(), out[j].Rate()
		if ri != rj {
			return ri > rj
		}
		if out[i].Launches != out[j].Launches {
			return out[i].Launches > out[j].Launches
		}
		return out[i].Site < out[j].Site
	})
	return out
}
