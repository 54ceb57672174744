package equation

import (
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/operators"
)

// FixedValue imposes output[components] = value. Components default to
// every output label.
func FixedValue(value float64, components ...string) Equation {
	return Func(func(_, output *label.LabelTensor) (*label.LabelTensor, error) {
		if len(components) == 0 {
			return output.AddScalar(-value), nil
		}
		sel, err := output.Extract(components...)
		if err != nil {
			return nil, err
		}
		return sel.AddScalar(-value), nil
	})
}

// FixedGradient imposes ∂output[c]/∂input[v] = value for every component c
// and variable v in d. Nil slices take the operator defaults.
func FixedGradient(value float64, components, d []string) Equation {
	return Func(func(input, output *label.LabelTensor) (*label.LabelTensor, error) {
		g, err := operators.Grad(output, input, components, d)
		if err != nil {
			return nil, err
		}
		return g.AddScalar(-value), nil
	})
}

// FixedFlux imposes div(output) = value over the paired components and
// variables.
func FixedFlux(value float64, components, d []string) Equation {
	return Func(func(input, output *label.LabelTensor) (*label.LabelTensor, error) {
		div, err := operators.Div(output, input, components, d)
		if err != nil {
			return nil, err
		}
		return div.AddScalar(-value), nil
	})
}

// Laplace imposes Δoutput[c] = 0 over the variables d.
func Laplace(components, d []string) Equation {
	return Func(func(input, output *label.LabelTensor) (*label.LabelTensor, error) {
		return operators.Laplacian(output, input, components, d, operators.MethodStandard)
	})
}
