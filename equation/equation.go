// Package equation defines residual equations for PINN conditions.
//
// An Equation maps the condition's input points and the model output at
// those points to a residual that training drives to zero:
//
//	ode := equation.Func(func(in, out *label.LabelTensor) (*label.LabelTensor, error) {
//	    dy, err := operators.Grad(out, in, nil, nil)
//	    if err != nil {
//	        return nil, err
//	    }
//	    x, _ := in.Extract("x")
//	    return dy.Add(out).Sub(x), nil
//	})
package equation

import (
	"fmt"
	"strconv"

	"github.com/dario-coscia/PINA/label"
)

// Equation computes a residual from inputs and model outputs. Equations
// are stateless.
type Equation interface {
	Residual(input, output *label.LabelTensor) (*label.LabelTensor, error)
}

// Func adapts a function to Equation.
type Func func(input, output *label.LabelTensor) (*label.LabelTensor, error)

// Residual calls f.
func (f Func) Residual(input, output *label.LabelTensor) (*label.LabelTensor, error) {
	return f(input, output)
}

// Reduction combines the residuals of a System.
type Reduction int

const (
	// ReduceNone keeps every residual column side by side.
	ReduceNone Reduction = iota
	// ReduceMean averages the residuals element-wise.
	ReduceMean
	// ReduceSum adds the residuals element-wise.
	ReduceSum
)

// ParseReduction resolves "none", "mean" and "sum".
func ParseReduction(s string) (Reduction, error) {
	switch s {
	case "none", "":
		return ReduceNone, nil
	case "mean":
		return ReduceMean, nil
	case "sum":
		return ReduceSum, nil
	}
	return 0, fmt.Errorf("%w: unknown reduction %q", label.ErrValue, s)
}

// System evaluates several equations on the same points.
type System struct {
	equations []Equation
	reduction Reduction
}

// NewSystem combines equations with reduction.
func NewSystem(reduction Reduction, equations ...Equation) (*System, error) {
	if len(equations) == 0 {
		return nil, fmt.Errorf("%w: empty equation system", label.ErrValue)
	}
	return &System{equations: equations, reduction: reduction}, nil
}

// Residual evaluates every equation. With ReduceNone residual columns are
// relabeled r<i> (or r<i>_<j> for multi-column residuals) and stacked.
func (s *System) Residual(input, output *label.LabelTensor) (*label.LabelTensor, error) {
	residuals := make([]*label.LabelTensor, len(s.equations))
	for i, eq := range s.equations {
		r, err := eq.Residual(input, output)
		if err != nil {
			return nil, fmt.Errorf("equation %d: %w", i, err)
		}
		residuals[i] = r
	}

	switch s.reduction {
	case ReduceNone:
		for i, r := range residuals {
			names := make([]string, r.Cols())
			for j := range names {
				names[j] = "r" + strconv.Itoa(i)
				if r.Cols() > 1 {
					names[j] += "_" + strconv.Itoa(j)
				}
			}
			relabeled, err := r.WithLabels(names...)
			if err != nil {
				return nil, err
			}
			residuals[i] = relabeled
		}
		return label.HStack(residuals...)
	case ReduceMean, ReduceSum:
		acc := residuals[0]
		for _, r := range residuals[1:] {
			if r.Cols() != acc.Cols() || r.Rows() != acc.Rows() {
				return nil, fmt.Errorf("%w: cannot reduce residuals of shape %dx%d and %dx%d",
					label.ErrValue, acc.Rows(), acc.Cols(), r.Rows(), r.Cols())
			}
			acc = acc.Add(r)
		}
		if s.reduction == ReduceMean {
			acc = acc.MulScalar(1 / float64(len(residuals)))
		}
		return acc, nil
	}
	return nil, fmt.Errorf("%w: unknown reduction %d", label.ErrValue, s.reduction)
}
