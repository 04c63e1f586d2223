// Package binding wires dashboard inputs to the figures computed from them.
//
// A Registry maps a set of named inputs to a pure compute function and a named
// output. A Session owns the current Selection; changing an input recomputes,
// synchronously and in full, every output whose binding declares that input.
package binding

import (
	"errors"
	"fmt"
	"slices"

	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/model"
)

// Input names a dashboard control.
type Input string

// Output names a dashboard figure.
type Output string

// Dashboard controls and figures.
const (
	InputSite    Input = "site-dropdown"
	InputPayload Input = "payload-slider"

	OutputProportion  Output = "success-pie-chart"
	OutputCorrelation Output = "success-payload-scatter-chart"
)

// ErrUnknownOutput is returned when no binding produces the requested output.
var ErrUnknownOutput = errors.New("unknown output")

// ComputeFunc builds a figure from the current selection.
type ComputeFunc func(sel model.Selection) (chart.Spec, error)

// Binding declares that Output is recomputed by Compute whenever any of Inputs changes.
type Binding struct {
	Output  Output
	Inputs  []Input
	Compute ComputeFunc
}

// Registry holds bindings in registration order.
type Registry struct {
	bindings []Binding
	byOutput map[Output]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byOutput: map[Output]int{}}
}

// Register adds a binding. Each output may be bound once.
func (r *Registry) Register(b Binding) error {
	if b.Output == "" {
		return fmt.Errorf("binding output is empty")
	}
	if len(b.Inputs) == 0 {
		return fmt.Errorf("binding %q declares no inputs", b.Output)
	}
	if b.Compute == nil {
		return fmt.Errorf("binding %q has no compute function", b.Output)
	}
	if _, dup := r.byOutput[b.Output]; dup {
		return fmt.Errorf("output %q is already bound", b.Output)
	}
	b.Inputs = slices.Clone(b.Inputs)
	r.byOutput[b.Output] = len(r.bindings)
	r.bindings = append(r.bindings, b)
	return nil
}

// Outputs returns every bound output in registration order.
func (r *Registry) Outputs() []Output {
	out := make([]Output, len(r.bindings))
	for i, b := range r.bindings {
		out[i] = b.Output
	}
	return out
}

// Inputs returns the inputs declared by the binding for out.
func (r *Registry) Inputs(out Output) ([]Input, bool) {
	i, ok := r.byOutput[out]
	if !ok {
		return nil, false
	}
	return slices.Clone(r.bindings[i].Inputs), true
}

// Dependents returns the outputs bound to in, in registration order.
func (r *Registry) Dependents(in Input) []Output {
	var out []Output
	for _, b := range r.bindings {
		if slices.Contains(b.Inputs, in) {
			out = append(out, b.Output)
		}
	}
	return out
}

// Evaluate computes out for sel without touching any session state.
func (r *Registry) Evaluate(out Output, sel model.Selection) (chart.Spec, error) {
	i, ok := r.byOutput[out]
	if !ok {
		return chart.Spec{}, fmt.Errorf("%w %q", ErrUnknownOutput, out)
	}
	spec, err := r.bindings[i].Compute(sel)
	if err != nil {
		return chart.Spec{}, fmt.Errorf("compute %s: %w", out, err)
	}
	return spec, nil
}

// Update is a replaced figure.
type Update struct {
	Output Output
	Figure chart.Spec
}

// Session tracks the selection of one dashboard and the figures last computed for it.
type Session struct {
	registry  *Registry
	selection model.Selection
	figures   map[Output]chart.Spec
}

// NewSession computes every output for initial and returns the session.
func (r *Registry) NewSession(initial model.Selection) (*Session, []Update, error) {
	s := &Session{
		registry:  r,
		selection: initial,
		figures:   make(map[Output]chart.Spec, len(r.bindings)),
	}
	updates, err := s.recompute(r.Outputs())
	if err != nil {
		return nil, nil, err
	}
	return s, updates, nil
}

// Selection returns the current selection.
func (s *Session) Selection() model.Selection {
	return s.selection
}

// Figure returns the latest figure for out.
func (s *Session) Figure(out Output) (chart.Spec, bool) {
	spec, ok := s.figures[out]
	return spec, ok
}

// SetSite changes the site input. Unchanged values trigger nothing.
func (s *Session) SetSite(site string) ([]Update, error) {
	if site == s.selection.Site {
		return nil, nil
	}
	next := s.selection
	next.Site = site
	return s.apply(InputSite, next)
}

// SetPayloadRange changes the payload input. Unchanged values trigger nothing.
func (s *Session) SetPayloadRange(payload model.PayloadRange) ([]Update, error) {
	if payload == s.selection.Payload {
		return nil, nil
	}
	next := s.selection
	next.Payload = payload
	return s.apply(InputPayload, next)
}

// apply commits next and recomputes the dependents of in. On error the
// selection and figures are left as they were.
func (s *Session) apply(in Input, next model.Selection) ([]Update, error) {
	prev := s.selection
	s.selection = next
	updates, err := s.recompute(s.registry.Dependents(in))
	if err != nil {
		s.selection = prev
		return nil, err
	}
	return updates, nil
}

func (s *Session) recompute(outputs []Output) ([]Update, error) {
	updates := make([]Update, 0, len(outputs))
	for _, out := range outputs {
		spec, err := s.registry.Evaluate(out, s.selection)
		if err != nil {
			return nil, err
		}
		updates = append(updates, Update{Output: out, Figure: spec})
	}
	for _, u := range updates {
		s.figures[u.Output] = u.Figure
	}
	return updates, nil
}
