// Package zoo holds ready-made problems used by the CLI and examples.
package zoo

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"

	"github.com/dario-coscia/PINA/equation"
	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/operators"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/tensor"
)

// Options are passed to every problem constructor.
type Options struct {
	DType tensor.DataType
	Rand  *rand.Rand
}

type constructor func(Options) (*problem.Problem, error)

var registry = map[string]constructor{
	"first-order-ode": FirstOrderODE,
	"poisson":         Poisson,
}

// Names lists the registered problems.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a registered problem by name.
func New(name string, opts Options) (*problem.Problem, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown problem %q, known: %v", label.ErrLookup, name, Names())
	}
	return c(opts)
}

// ODEEquation is y' + y = x.
var ODEEquation = equation.Func(func(in, out *label.LabelTensor) (*label.LabelTensor, error) {
	dy, err := operators.Grad(out, in, nil, nil)
	if err != nil {
		return nil, err
	}
	x, err := in.Extract("x")
	if err != nil {
		return nil, err
	}
	return dy.Add(out).Sub(x), nil
})

// FirstOrderODE is y' + y = x on [0, 5] with y(0) = 1. Its solution is
// x - 1 + 2 exp(-x).
func FirstOrderODE(opts Options) (*problem.Problem, error) {
	p, err := problem.New(problem.Config{
		OutputVariables: []string{"y"},
		Spatial:         geometry.MustCartesianDomain(geometry.Range("x", 0, 5)),
		Solution:        odeSolution,
		DType:           opts.DType,
		Rand:            opts.Rand,
	})
	if err != nil {
		return nil, err
	}
	return withConditions(p, map[string]conditionSpec{
		"x0": {geometry.MustCartesianDomain(geometry.Fixed("x", 0)), equation.FixedValue(1)},
		"D":  {geometry.MustCartesianDomain(geometry.Range("x", 0, 5)), ODEEquation},
	}, "x0", "D")
}

func odeSolution(in *label.LabelTensor) (*label.LabelTensor, error) {
	x, err := in.Extract("x")
	if err != nil {
		return nil, err
	}
	y := x.AddScalar(-1).Add(x.Neg().Exp().MulScalar(2))
	return y.WithLabels("y")
}

// PoissonEquation is Δu = sin(πx) sin(πy).
var PoissonEquation = equation.Func(func(in, out *label.LabelTensor) (*label.LabelTensor, error) {
	lap, err := operators.Laplacian(out, in, []string{"u"}, []string{"x", "y"}, operators.MethodStandard)
	if err != nil {
		return nil, err
	}
	force, err := forcing(in)
	if err != nil {
		return nil, err
	}
	return lap.Sub(force), nil
})

func forcing(in *label.LabelTensor) (*label.LabelTensor, error) {
	x, err := in.Extract("x")
	if err != nil {
		return nil, err
	}
	y, err := in.Extract("y")
	if err != nil {
		return nil, err
	}
	return x.MulScalar(math.Pi).Sin().Mul(y.MulScalar(math.Pi).Sin()), nil
}

// Poisson is Δu = sin(πx) sin(πy) on the unit square with u = 0 on the
// four edges gamma1 (y = 1), gamma2 (y = 0), gamma3 (x = 1) and
// gamma4 (x = 0).
func Poisson(opts Options) (*problem.Problem, error) {
	p, err := problem.New(problem.Config{
		OutputVariables: []string{"u"},
		Spatial:         geometry.MustCartesianDomain(geometry.Range("x", 0, 1), geometry.Range("y", 0, 1)),
		Solution:        poissonSolution,
		DType:           opts.DType,
		Rand:            opts.Rand,
	})
	if err != nil {
		return nil, err
	}
	edge := func(spans ...geometry.Span) conditionSpec {
		return conditionSpec{geometry.MustCartesianDomain(spans...), equation.FixedValue(0)}
	}
	return withConditions(p, map[string]conditionSpec{
		"gamma1": edge(geometry.Range("x", 0, 1), geometry.Fixed("y", 1)),
		"gamma2": edge(geometry.Range("x", 0, 1), geometry.Fixed("y", 0)),
		"gamma3": edge(geometry.Fixed("x", 1), geometry.Range("y", 0, 1)),
		"gamma4": edge(geometry.Fixed("x", 0), geometry.Range("y", 0, 1)),
		"D":      {geometry.MustCartesianDomain(geometry.Range("x", 0, 1), geometry.Range("y", 0, 1)), PoissonEquation},
	}, "gamma1", "gamma2", "gamma3", "gamma4", "D")
}

func poissonSolution(in *label.LabelTensor) (*label.LabelTensor, error) {
	f, err := forcing(in)
	if err != nil {
		return nil, err
	}
	return f.MulScalar(-1 / (2 * math.Pi * math.Pi)).WithLabels("u")
}

type conditionSpec struct {
	location geometry.Location
	equation equation.Equation
}

func withConditions(p *problem.Problem, specs map[string]conditionSpec, order ...string) (*problem.Problem, error) {
	if len(order) != len(specs) {
		return nil, fmt.Errorf("%w: condition order %v does not cover %d conditions", label.ErrValue, order, len(specs))
	}
	for _, name := range order {
		spec, ok := specs[name]
		if !ok || slices.Contains(p.ConditionNames(), name) {
			return nil, fmt.Errorf("%w: bad condition order %v", label.ErrValue, order)
		}
		c, err := problem.NewLocationCondition(spec.location, spec.equation)
		if err != nil {
			return nil, err
		}
		if err := p.AddCondition(name, c); err != nil {
			return nil, err
		}
	}
	return p, nil
}
