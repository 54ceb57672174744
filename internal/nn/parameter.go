package nn

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that require gradient computation during training.
// They typically represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
//	grad := weight.Grad() // after backward pass
type Parameter struct {
	name   string            // Parameter name (e.g., "weight", "bias")
	tensor *tensor.RawTensor // The parameter tensor
	grad   *tensor.RawTensor // Gradient tensor (computed during backward pass)
}

// NewParameter creates a new trainable parameter.
//
// The parameter tensor should be initialized before creating the Parameter.
// Gradient will be allocated during the first backward pass.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *tensor.RawTensor {
	return p.grad
}

// SetGrad sets the gradient tensor.
//
// This is typically called by the solver after the backward pass.
func (p *Parameter) SetGrad(grad *tensor.RawTensor) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// Cast converts the parameter values to dtype. The gradient is dropped.
func (p *Parameter) Cast(dtype tensor.DataType) {
	if p.tensor.DType() == dtype {
		return
	}
	t, err := tensor.FromFloat64s(p.tensor.Float64s(), p.tensor.Shape(), dtype, p.tensor.Device())
	if err != nil {
		panic(fmt.Sprintf("parameter %s: cast: %v", p.name, err))
	}
	p.tensor = t
	p.grad = nil
}
