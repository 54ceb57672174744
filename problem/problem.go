// Package problem describes a differential problem: its variables, the
// domains they live in, and the conditions a solution must satisfy.
//
// A Problem is composed from capabilities rather than a type hierarchy: it
// declares a spatial, temporal and/or parameter domain, and the input
// variables are the union of those domains' variables in that order.
//
//	p, _ := problem.New(problem.Config{
//	    OutputVariables: []string{"y"},
//	    Spatial:         geometry.MustCartesianDomain(geometry.Range("x", 0, 5)),
//	})
//	_ = p.AddCondition("D", interior)
//	_ = p.DiscretiseDomain(100, geometry.Grid, nil, nil)
package problem

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
)

// ErrNotDiscretised reports location conditions without sampled points.
var ErrNotDiscretised = fmt.Errorf("domain not discretised: %w", label.ErrRuntime)

// Capability is a kind of domain a problem can declare.
type Capability int

// Problem capabilities, in input-variable order.
const (
	Spatial Capability = iota
	Temporal
	Parametric
)

func (c Capability) String() string {
	switch c {
	case Spatial:
		return "spatial"
	case Temporal:
		return "temporal"
	case Parametric:
		return "parametric"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

// State is the lifecycle stage of a Problem.
type State int

// Problem states.
const (
	Uninitialized State = iota
	DomainDiscretised
	ReadyForTraining
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case DomainDiscretised:
		return "domain-discretised"
	case ReadyForTraining:
		return "ready-for-training"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Solution is a closed-form solution used to report errors.
type Solution func(input *label.LabelTensor) (*label.LabelTensor, error)

// Config declares a problem.
type Config struct {
	OutputVariables []string

	// Domains; at least one must be set.
	Spatial    geometry.Location
	Temporal   geometry.Location
	Parametric geometry.Location

	// Solution is optional.
	Solution Solution

	Backend tensor.Backend  // backend of stored points (default: cpu.New())
	DType   tensor.DataType // initial point precision (default: Float32)
	Rand    *rand.Rand      // sampling source (default: global)
}

// Problem holds the conditions of a differential problem and their points.
type Problem struct {
	domains  map[Capability]geometry.Location
	inputs   []string
	outputs  []string
	solution Solution
	backend  tensor.Backend
	dtype    tensor.DataType
	rng      *rand.Rand

	names      []string
	conditions map[string]*Condition
	samples    map[string][]*geometry.Points // independent sample groups of location conditions
	points     map[string]*label.LabelTensor // input points, columns ordered as inputs
	targets    map[string]*label.LabelTensor // output points of data conditions
	state      State
}

// New validates cfg and builds an empty problem.
func New(cfg Config) (*Problem, error) {
	if len(cfg.OutputVariables) == 0 {
		return nil, fmt.Errorf("%w: problem needs output variables", label.ErrValue)
	}
	if hasDuplicates(cfg.OutputVariables) {
		return nil, fmt.Errorf("%w: duplicate output variables %v", label.ErrValue, cfg.OutputVariables)
	}
	if cfg.Backend == nil {
		cfg.Backend = cpu.New()
	}
	if cfg.DType != tensor.Float64 {
		cfg.DType = tensor.Float32
	}

	p := &Problem{
		domains:    make(map[Capability]geometry.Location),
		outputs:    slices.Clone(cfg.OutputVariables),
		solution:   cfg.Solution,
		backend:    cfg.Backend,
		dtype:      cfg.DType,
		rng:        cfg.Rand,
		conditions: make(map[string]*Condition),
		samples:    make(map[string][]*geometry.Points),
		points:     make(map[string]*label.LabelTensor),
		targets:    make(map[string]*label.LabelTensor),
	}
	for c, loc := range map[Capability]geometry.Location{Spatial: cfg.Spatial, Temporal: cfg.Temporal, Parametric: cfg.Parametric} {
		if loc != nil {
			p.domains[c] = loc
		}
	}
	if len(p.domains) == 0 {
		return nil, fmt.Errorf("%w: problem declares no domain", label.ErrValue)
	}
	for _, c := range []Capability{Spatial, Temporal, Parametric} {
		if loc, ok := p.domains[c]; ok {
			p.inputs = append(p.inputs, loc.Variables()...)
		}
	}
	if hasDuplicates(p.inputs) {
		return nil, fmt.Errorf("%w: domains share variables %v", label.ErrValue, p.inputs)
	}
	if overlap(p.inputs, p.outputs) {
		return nil, fmt.Errorf("%w: variables %v are both inputs and outputs", label.ErrValue, p.outputs)
	}
	p.updateState()
	return p, nil
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}

func overlap(a, b []string) bool {
	return slices.ContainsFunc(a, func(s string) bool { return slices.Contains(b, s) })
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, s := range a {
		if !slices.Contains(b, s) {
			return false
		}
	}
	return true
}

// Has reports whether the problem declares capability c.
func (p *Problem) Has(c Capability) bool {
	_, ok := p.domains[c]
	return ok
}

// Domain returns the location declared for capability c.
func (p *Problem) Domain(c Capability) (geometry.Location, bool) {
	loc, ok := p.domains[c]
	return loc, ok
}

// InputVariables returns spatial, temporal, then parameter variables.
func (p *Problem) InputVariables() []string { return slices.Clone(p.inputs) }

// OutputVariables returns the field variables.
func (p *Problem) OutputVariables() []string { return slices.Clone(p.outputs) }

// Solution returns the closed-form solution, nil when unknown.
func (p *Problem) Solution() Solution { return p.solution }

// Backend returns the backend stored points are bound to.
func (p *Problem) Backend() tensor.Backend { return p.backend }

// DType returns the precision of stored points.
func (p *Problem) DType() tensor.DataType { return p.dtype }

// Rand returns the sampling source, nil for the global one.
func (p *Problem) Rand() *rand.Rand { return p.rng }

// State returns the lifecycle stage.
func (p *Problem) State() State { return p.state }

// ConditionNames returns condition names in insertion order.
func (p *Problem) ConditionNames() []string { return slices.Clone(p.names) }

// Condition returns a condition by name.
func (p *Problem) Condition(name string) (*Condition, bool) {
	c, ok := p.conditions[name]
	return c, ok
}

// AddCondition registers a condition under a unique name.
//
// A location must span exactly the problem's input variables. Fixed input
// points must carry every input variable, and data targets only output
// variables.
func (p *Problem) AddCondition(name string, c *Condition) error {
	if name == "" || c == nil {
		return fmt.Errorf("%w: condition needs a name and a value", label.ErrValue)
	}
	if _, dup := p.conditions[name]; dup {
		return fmt.Errorf("%w: condition %q already defined", label.ErrValue, name)
	}

	switch c.kind {
	case LocationKind:
		if vars := c.location.Variables(); !sameSet(vars, p.inputs) {
			return fmt.Errorf("%w: condition %q location variables %v do not match declared domains %v",
				label.ErrValue, name, vars, p.inputs)
		}
	case InputKind, DataKind:
		if !sameSet(c.input.Labels(), p.inputs) {
			return fmt.Errorf("%w: condition %q input labels %v do not match input variables %v",
				label.ErrValue, name, c.input.Labels(), p.inputs)
		}
		if c.kind == DataKind {
			for _, l := range c.output.Labels() {
				if !slices.Contains(p.outputs, l) {
					return fmt.Errorf("%w: condition %q target %q is not an output variable %v",
						label.ErrValue, name, l, p.outputs)
				}
			}
		}
		pts, err := c.input.WithBackend(p.backend).Extract(p.inputs...)
		if err != nil {
			return err
		}
		p.points[name] = pts.Cast(p.dtype)
		if c.kind == DataKind {
			p.targets[name] = c.output.WithBackend(p.backend).Cast(p.dtype)
		}
	}

	p.names = append(p.names, name)
	p.conditions[name] = c
	p.updateState()
	return nil
}

// DiscretiseDomain samples n points with mode for the named location
// conditions (all when locations is empty) over the named variables (all
// when variables is empty).
//
// Variables sampled in separate calls are combined by cartesian product;
// sampling a variable again replaces its previous values. Each condition
// keeps its samples as independent groups (one per variable for Grid and
// Chebyshev, one joint group for Random and LatinHypercube) and the points
// are the product of the groups.
func (p *Problem) DiscretiseDomain(n int, mode geometry.Mode, variables, locations []string) error {
	if len(locations) == 0 {
		locations = p.locationConditions()
	}
	for _, name := range locations {
		c, err := p.locationCondition(name)
		if err != nil {
			return err
		}
		fresh, err := sampleGroups(c.location, n, mode, p.rng, variables)
		if err != nil {
			return fmt.Errorf("condition %q: %w", name, err)
		}
		var resampled []string
		for _, g := range fresh {
			resampled = append(resampled, g.Labels...)
		}
		var groups []*geometry.Points
		for _, g := range p.samples[name] {
			if g = g.Without(resampled...); g.Rows() > 0 {
				groups = append(groups, g)
			}
		}
		groups = append(groups, fresh...)

		pts := &geometry.Points{}
		for _, g := range groups {
			if pts, err = pts.Product(g); err != nil {
				return fmt.Errorf("condition %q: %w", name, err)
			}
		}
		p.samples[name] = groups

		delete(p.points, name)
		if sameSet(pts.Labels, p.inputs) {
			lt, err := p.toLabelTensor(pts)
			if err != nil {
				return fmt.Errorf("condition %q: %w", name, err)
			}
			p.points[name] = lt
		}
	}
	if p.state == ReadyForTraining {
		p.state = DomainDiscretised
	}
	p.updateState()
	return nil
}

func sampleGroups(loc geometry.Location, n int, mode geometry.Mode, rng *rand.Rand, variables []string) ([]*geometry.Points, error) {
	if mode != geometry.Grid && mode != geometry.Chebyshev {
		pts, err := loc.Sample(n, mode, rng, variables...)
		if err != nil {
			return nil, err
		}
		return []*geometry.Points{pts}, nil
	}
	if len(variables) == 0 {
		variables = loc.Variables()
	}
	groups := make([]*geometry.Points, len(variables))
	for i, v := range variables {
		pts, err := loc.Sample(n, mode, rng, v)
		if err != nil {
			return nil, err
		}
		groups[i] = pts
	}
	return groups, nil
}

func (p *Problem) toLabelTensor(pts *geometry.Points) (*label.LabelTensor, error) {
	ordered, err := pts.Reorder(p.inputs...)
	if err != nil {
		return nil, err
	}
	return ordered.LabelTensor(p.dtype, p.backend)
}

func (p *Problem) locationConditions() []string {
	var names []string
	for _, name := range p.names {
		if p.conditions[name].kind == LocationKind {
			names = append(names, name)
		}
	}
	return names
}

func (p *Problem) locationCondition(name string) (*Condition, error) {
	c, ok := p.conditions[name]
	if !ok {
		return nil, fmt.Errorf("%w: no condition %q", label.ErrLookup, name)
	}
	if c.kind != LocationKind {
		return nil, fmt.Errorf("%w: condition %q is %s-based, not location-based", label.ErrValue, name, c.kind)
	}
	return c, nil
}

// missing lists location conditions without complete points.
func (p *Problem) missing() []string {
	var names []string
	for _, name := range p.locationConditions() {
		if _, ok := p.points[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

func (p *Problem) updateState() {
	switch {
	case len(p.conditions) == 0, len(p.missing()) > 0:
		p.state = Uninitialized
	case p.state == Uninitialized:
		p.state = DomainDiscretised
	}
}

// IsDiscretised reports whether the problem has conditions and every
// location condition has points.
func (p *Problem) IsDiscretised() bool {
	return len(p.conditions) > 0 && len(p.missing()) == 0
}

// Prepare checks that every location condition is discretised, casts all
// points to dtype and moves the problem to ReadyForTraining.
func (p *Problem) Prepare(dtype tensor.DataType) error {
	if len(p.conditions) == 0 {
		return fmt.Errorf("%w: problem has no conditions", ErrNotDiscretised)
	}
	if missing := p.missing(); len(missing) > 0 {
		return fmt.Errorf("%w: sample points for %s", ErrNotDiscretised, strings.Join(missing, ", "))
	}
	if !dtype.IsFloat() {
		return fmt.Errorf("%w: points must be floating point, got %s", label.ErrValue, dtype)
	}
	p.dtype = dtype
	for name, pts := range p.points {
		p.points[name] = pts.Cast(dtype)
	}
	for name, t := range p.targets {
		p.targets[name] = t.Cast(dtype)
	}
	p.state = ReadyForTraining
	return nil
}

// InputPoints returns the current input points of a condition, columns
// ordered as InputVariables.
func (p *Problem) InputPoints(name string) (*label.LabelTensor, error) {
	if _, ok := p.conditions[name]; !ok {
		return nil, fmt.Errorf("%w: no condition %q", label.ErrLookup, name)
	}
	pts, ok := p.points[name]
	if !ok {
		return nil, fmt.Errorf("%w: condition %q", ErrNotDiscretised, name)
	}
	return pts, nil
}

// OutputPoints returns the targets of a data condition.
func (p *Problem) OutputPoints(name string) (*label.LabelTensor, error) {
	t, ok := p.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: condition %q has no output points", label.ErrLookup, name)
	}
	return t, nil
}

// SetInputPoints replaces the points of a location condition.
func (p *Problem) SetInputPoints(name string, pts *label.LabelTensor) error {
	ordered, err := p.checkPoints(name, pts)
	if err != nil {
		return err
	}
	p.points[name] = ordered
	delete(p.samples, name)
	p.updateState()
	return nil
}

// AddPoints appends points to a location condition.
func (p *Problem) AddPoints(name string, pts *label.LabelTensor) error {
	ordered, err := p.checkPoints(name, pts)
	if err != nil {
		return err
	}
	if old, ok := p.points[name]; ok {
		if ordered, err = label.VStack(old, ordered); err != nil {
			return err
		}
	}
	p.points[name] = ordered
	delete(p.samples, name)
	p.updateState()
	return nil
}

func (p *Problem) checkPoints(name string, pts *label.LabelTensor) (*label.LabelTensor, error) {
	if _, err := p.locationCondition(name); err != nil {
		return nil, err
	}
	if pts == nil || !sameSet(pts.Labels(), p.inputs) {
		return nil, fmt.Errorf("%w: points for %q must be labeled %v", label.ErrValue, name, p.inputs)
	}
	ordered, err := pts.WithBackend(p.backend).Extract(p.inputs...)
	if err != nil {
		return nil, err
	}
	return ordered.Cast(p.dtype), nil
}

// Sample draws n fresh points from the location of a condition without
// storing them.
func (p *Problem) Sample(name string, n int, mode geometry.Mode) (*label.LabelTensor, error) {
	c, err := p.locationCondition(name)
	if err != nil {
		return nil, err
	}
	pts, err := c.location.Sample(n, mode, p.rng)
	if err != nil {
		return nil, err
	}
	return p.toLabelTensor(pts)
}

// IsNotDiscretised reports whether err is ErrNotDiscretised.
func IsNotDiscretised(err error) bool { return errors.Is(err, ErrNotDiscretised) }
