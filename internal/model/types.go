// Package model defines shared data structures.
package model

// AllSites is the site selector value that disables site filtering.
const AllSites = "ALL"

// Payload slider domain in kilograms.
const (
	PayloadSliderMin  = 0
	PayloadSliderMax  = 10000
	PayloadSliderStep = 1000
)

// Outcome classes.
const (
	ClassFailure = 0
	ClassSuccess = 1
)

// LaunchRecord is one launch attempt.
type LaunchRecord struct {
	FlightNumber    int
	Site            string
	PayloadMassKg   float64
	Class           int
	BoosterVersion  string
	BoosterCategory string
}

// Success reports whether the launch outcome class is success.
func (r LaunchRecord) Success() bool {
	return r.Class == ClassSuccess
}

// PayloadRange is a closed payload interval in kilograms.
type PayloadRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies within the range, both ends inclusive.
func (p PayloadRange) Contains(v float64) bool {
	return p.Low <= v && v <= p.High
}

// Selection is the current value of the dashboard inputs.
type Selection struct {
	Site    string       `json:"site"`
	Payload PayloadRange `json:"payload"`
}

// SiteCount is the number of successful launches at a site.
type SiteCount struct {
	Site      string
	Successes int
}

// ClassCount is the number of launches with a given outcome class.
type ClassCount struct {
	Class int
	Count int
}

// ProportionView is the aggregated success breakdown for a site selection.
// BySite is filled when Site is AllSites, ByClass otherwise.
type ProportionView struct {
	Site    string
	BySite  []SiteCount
	ByClass []ClassCount
}

// Len returns the number of categories in the view.
func (v ProportionView) Len() int {
	if v.Site == AllSites {
		return len(v.BySite)
	}
	return len(v.ByClass)
}

// CorrelationView is the filtered row set plotted as payload against outcome.
type CorrelationView struct {
	Site    string
	Payload PayloadRange
	Rows    []LaunchRecord
}

// SiteRate summarizes outcomes at one site.
type SiteRate struct {
	Site      string
	Launches  int
	Successes int
}

// Rate returns the success ratio in [0,1].
func (r SiteRate) Rate() float64 {
	if r.Launches == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Launches)
}

// DashConfig holds resolved settings shared by the front ends.
type DashConfig struct {
	DataPath string
	Site     string
	Host     string
	Port     int
}
