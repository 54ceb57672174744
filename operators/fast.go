package operators

import (
	"fmt"
	"slices"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
)

// FastGrad returns the gradient of column col of output with respect to the
// whole input. The backward pass is seeded with a one-hot column mask, so no
// extraction op is recorded on the tape.
func FastGrad(backend autodiff.Differentiator, output, input *tensor.RawTensor, col int) (*tensor.RawTensor, error) {
	mask, err := columnMask(output.Shape(), col, output.DType())
	if err != nil {
		return nil, err
	}
	return backend.Grad(output, input, mask, true)
}

// FastLaplacian returns the N×1 sum over vars of the second derivatives of
// column col of output with respect to the input columns vars.
func FastLaplacian(backend autodiff.Differentiator, output, input *tensor.RawTensor, col int, vars []int) (*tensor.RawTensor, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: no variables", label.ErrValue)
	}
	g, err := FastGrad(backend, output, input, col)
	if err != nil {
		return nil, err
	}

	var diag *tensor.RawTensor
	for _, v := range vars {
		mask, err := columnMask(g.Shape(), v, g.DType())
		if err != nil {
			return nil, err
		}
		h, err := backend.Grad(g, input, mask, true)
		if err != nil {
			return nil, err
		}
		term := backend.Mul(h, mask)
		if diag == nil {
			diag = term
		} else {
			diag = backend.Add(diag, term)
		}
	}
	return backend.SumDim(diag, 1, true), nil
}

func columnMask(shape tensor.Shape, col int, dtype tensor.DataType) (*tensor.RawTensor, error) {
	if len(shape) != 2 || col < 0 || col >= shape[1] {
		return nil, fmt.Errorf("%w: column %d out of range for shape %v", label.ErrValue, col, shape)
	}
	values := make([]float64, shape.NumElements())
	for i := col; i < len(values); i += shape[1] {
		values[i] = 1
	}
	return tensor.FromFloat64s(values, shape, dtype, tensor.CPU)
}

func laplacianFast(output, input *label.LabelTensor, c string, d []string) (*label.LabelTensor, error) {
	backend, err := differentiator(output)
	if err != nil {
		return nil, err
	}
	inputs := input.Labels()
	vars := make([]int, len(d))
	for i, v := range d {
		vars[i] = slices.Index(inputs, v)
	}
	raw, err := FastLaplacian(backend, output.Raw(), input.Raw(), slices.Index(output.Labels(), c), vars)
	if err != nil {
		return nil, err
	}
	return label.New(raw, []string{"dd" + c}, backend)
}
