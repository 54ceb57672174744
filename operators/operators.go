// Package operators computes differential operators on labeled tensors.
//
// Derivatives come from the reverse-mode Grad primitive of the tensor's
// backend (autodiff.Differentiator). The input must be registered with
// RequireGrad before the forward pass that produced the output; otherwise
// the engine's autodiff.ErrNotTracked is returned unchanged.
//
// Every derivative is computed with createGraph, so results can be
// differentiated again and contribute to parameter gradients during
// training.
package operators

import (
	"fmt"
	"strings"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
)

// Method selects how second derivatives are computed.
type Method int

const (
	// MethodStandard nests Grad calls on labeled tensors.
	MethodStandard Method = iota
	// MethodFast seeds backward passes with column masks on raw tensors.
	MethodFast
)

// String returns "std" or "fast".
func (m Method) String() string {
	switch m {
	case MethodStandard:
		return "std"
	case MethodFast:
		return "fast"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves "std" (or "") and "fast".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "std", "standard", "":
		return MethodStandard, nil
	case "fast":
		return MethodFast, nil
	}
	return 0, fmt.Errorf("%w: unknown method %q", label.ErrValue, s)
}

// PartialName is the label of the derivative of component with respect to
// variable.
func PartialName(component, variable string) string {
	return "d" + component + "d" + variable
}

func differentiator(t *label.LabelTensor) (autodiff.Differentiator, error) {
	d, ok := t.Backend().(autodiff.Differentiator)
	if !ok {
		return nil, fmt.Errorf("%w: backend %s cannot differentiate", label.ErrRuntime, t.Backend().Name())
	}
	return d, nil
}

// checkNames fails with ErrValue when a name is not a label of t.
func checkNames(t *label.LabelTensor, names []string, role string) error {
	for _, n := range names {
		if !t.Has(n) {
			return fmt.Errorf("%w: %s %q not in %v", label.ErrValue, role, n, t.Labels())
		}
	}
	return nil
}

// Grad returns the partial derivatives of the output components with
// respect to the input variables d, one column d<c>d<v> per pair.
//
// components may be nil only for a single-column output. d defaults to
// every input label.
func Grad(output, input *label.LabelTensor, components, d []string) (*label.LabelTensor, error) {
	if components == nil {
		if output.Cols() != 1 {
			return nil, fmt.Errorf("%w: output %v has %d columns, components must be given",
				label.ErrValue, output.Labels(), output.Cols())
		}
		components = output.Labels()
	}
	if d == nil {
		d = input.Labels()
	}
	if err := checkNames(output, components, "component"); err != nil {
		return nil, err
	}
	if err := checkNames(input, d, "variable"); err != nil {
		return nil, err
	}
	backend, err := differentiator(output)
	if err != nil {
		return nil, err
	}

	parts := make([]*label.LabelTensor, 0, len(components))
	for _, c := range components {
		col, err := output.Extract(c)
		if err != nil {
			return nil, err
		}
		g, err := backend.Grad(col.Raw(), input.Raw(), nil, true)
		if err != nil {
			return nil, err
		}
		part, err := partials(backend, g, input, c, d)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return label.HStack(parts...)
}

// partials labels a full input-shaped gradient of component c and keeps the
// columns d.
func partials(backend tensor.Backend, g *tensor.RawTensor, input *label.LabelTensor, c string, d []string) (*label.LabelTensor, error) {
	full, err := label.New(g, input.Labels(), backend)
	if err != nil {
		return nil, err
	}
	selected, err := full.Extract(d...)
	if err != nil {
		return nil, err
	}
	names := selected.Labels()
	for i, v := range names {
		names[i] = PartialName(c, v)
	}
	return selected.WithLabels(names...)
}

// Div returns the sum over k of ∂output[components[k]]/∂input[d[k]] as one
// column labeled by joining the partial names with "+".
//
// components defaults to every output label and d to every input label.
// Mismatched lengths fail with ErrRuntime.
func Div(output, input *label.LabelTensor, components, d []string) (*label.LabelTensor, error) {
	if components == nil {
		components = output.Labels()
	}
	if d == nil {
		d = input.Labels()
	}
	if len(components) != len(d) {
		return nil, fmt.Errorf("%w: div needs as many components as variables, got %d and %d",
			label.ErrRuntime, len(components), len(d))
	}

	var (
		sum   *label.LabelTensor
		names = make([]string, len(components))
	)
	for k := range components {
		g, err := Grad(output, input, components[k:k+1], d[k:k+1])
		if err != nil {
			return nil, err
		}
		names[k] = PartialName(components[k], d[k])
		if sum == nil {
			sum = g
		} else {
			sum = sum.Add(g)
		}
	}
	if sum == nil {
		return nil, fmt.Errorf("%w: div of no components", label.ErrValue)
	}
	return sum.WithLabels(strings.Join(names, "+"))
}

// Laplacian returns, for each component, the sum of ∂²output[c]/∂input[v]²
// over v in d, labeled dd<c>.
//
// components defaults to every output label and d to every input label.
func Laplacian(output, input *label.LabelTensor, components, d []string, method Method) (*label.LabelTensor, error) {
	if components == nil {
		components = output.Labels()
	}
	if d == nil {
		d = input.Labels()
	}
	if len(components) == 0 || len(d) == 0 {
		return nil, fmt.Errorf("%w: laplacian needs components and variables", label.ErrValue)
	}
	if err := checkNames(output, components, "component"); err != nil {
		return nil, err
	}
	if err := checkNames(input, d, "variable"); err != nil {
		return nil, err
	}

	parts := make([]*label.LabelTensor, 0, len(components))
	for _, c := range components {
		var (
			lap *label.LabelTensor
			err error
		)
		switch method {
		case MethodStandard:
			lap, err = laplacianStandard(output, input, c, d)
		case MethodFast:
			lap, err = laplacianFast(output, input, c, d)
		default:
			err = fmt.Errorf("%w: unknown method %v", label.ErrValue, method)
		}
		if err != nil {
			return nil, err
		}
		parts = append(parts, lap)
	}
	return label.HStack(parts...)
}

func laplacianStandard(output, input *label.LabelTensor, c string, d []string) (*label.LabelTensor, error) {
	first, err := Grad(output, input, []string{c}, d)
	if err != nil {
		return nil, err
	}
	var sum *label.LabelTensor
	for _, v := range d {
		second, err := Grad(first, input, []string{PartialName(c, v)}, []string{v})
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = second
		} else {
			sum = sum.Add(second)
		}
	}
	return sum.WithLabels("dd" + c)
}
