// Package chart describes dashboard figures and renders them as terminal text or PNG.
package chart

// Kind selects how a Spec is drawn.
type Kind string

// Figure kinds.
const (
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
)

// Slice is one category of a pie figure.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Point is one marker of a scatter figure.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Group string  `json:"group"`
	Label string  `json:"label,omitempty"`
}

// Tick is a labelled axis position.
type Tick struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// Domain is an axis extent.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Spec is a complete, renderer-independent figure.
type Spec struct {
	Kind    Kind     `json:"kind"`
	Title   string   `json:"title"`
	XLabel  string   `json:"x_label,omitempty"`
	YLabel  string   `json:"y_label,omitempty"`
	XDomain *Domain  `json:"x_domain,omitempty"`
	YTicks  []Tick   `json:"y_ticks,omitempty"`
	Slices  []Slice  `json:"slices,omitempty"`
	Points  []Point  `json:"points,omitempty"`
	Groups  []string `json:"groups,omitempty"`
}

// Pie builds a pie figure.
func Pie(title string, slices []Slice) Spec {
	return Spec{Kind: KindPie, Title: title, Slices: slices}
}

// Scatter builds a scatter figure. Groups are listed in first-appearance order.
func Scatter(title, xLabel, yLabel string, points []Point) Spec {
	seen := map[string]struct{}{}
	var groups []string
	for _, p := range points {
		if _, ok := seen[p.Group]; ok {
			continue
		}
		seen[p.Group] = struct{}{}
		groups = append(groups, p.Group)
	}
	return Spec{
		Kind:   KindScatter,
		Title:  title,
		XLabel: xLabel,
		YLabel: yLabel,
		Points: points,
		Groups: groups,
	}
}

// Empty reports whether the figure has nothing to draw.
func (s Spec) Empty() bool {
	switch s.Kind {
	case KindPie:
		return s.total() == 0
	case KindScatter:
		return len(s.Points) == 0
	default:
		return len(s.Slices) == 0 && len(s.Points) == 0
	}
}

func (s Spec) total() float64 {
	var sum float64
	for _, sl := range s.Slices {
		sum += sl.Value
	}
	return sum
}
