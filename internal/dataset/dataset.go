// Package dataset loads the launch table once and serves read-only copies of it.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/launchdash/internal/model"
)

// ErrEmpty is returned when a source holds no launch records.
var ErrEmpty = errors.New("dataset is empty")

// Dataset is an immutable, ordered table of launch records.
type Dataset struct {
	source  string
	records []model.LaunchRecord
	sites   []string
	siteSet map[string]struct{}
	bounds  model.PayloadRange
}

// New validates records and builds a Dataset from a private copy of them.
func New(source string, records []model.LaunchRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	d := &Dataset{
		source:  source,
		records: make([]model.LaunchRecord, len(records)),
		siteSet: map[string]struct{}{},
		bounds:  model.PayloadRange{Low: math.Inf(1), High: math.Inf(-1)},
	}
	copy(d.records, records)
	for i, r := range d.records {
		if err := validate(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, ok := d.siteSet[r.Site]; !ok {
			d.siteSet[r.Site] = struct{}{}
			d.sites = append(d.sites, r.Site)
		}
		d.bounds.Low = math.Min(d.bounds.Low, r.PayloadMassKg)
		d.bounds.High = math.Max(d.bounds.High, r.PayloadMassKg)
	}
	return d, nil
}

func validate(r model.LaunchRecord) error {
	if r.Site == "" {
		return fmt.Errorf("launch site is empty")
	}
	if r.Site == model.AllSites {
		return fmt.Errorf("launch site %q collides with the all-sites selector", r.Site)
	}
	if r.Class != model.ClassFailure && r.Class != model.ClassSuccess {
		return fmt.Errorf("class must be 0 or 1, got %d", r.Class)
	}
	if math.IsNaN(r.PayloadMassKg) || math.IsInf(r.PayloadMassKg, 0) || r.PayloadMassKg < 0 {
		return fmt.Errorf("payload mass must be a non-negative number, got %v", r.PayloadMassKg)
	}
	return nil
}

// Source returns the path the dataset was loaded from.
func (d *Dataset) Source() string {
	return d.source
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []model.LaunchRecord {
	out := make([]model.LaunchRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Sites returns the distinct launch sites in first-appearance order.
func (d *Dataset) Sites() []string {
	return append([]string(nil), d.sites...)
}

// HasSite reports whether any record was launched from site.
func (d *Dataset) HasSite(site string) bool {
	_, ok := d.siteSet[site]
	return ok
}

// SiteOptions returns the site selector domain: AllSites followed by Sites.
func (d *Dataset) SiteOptions() []string {
	return append([]string{model.AllSites}, d.sites...)
}

// PayloadBounds returns the observed minimum and maximum payload mass.
func (d *Dataset) PayloadBounds() model.PayloadRange {
	return d.bounds
}
