// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Backward rules are written only in terms of tensor.Backend calls. When the
// backend passed to Backward is itself recording, the gradient computation
// lands on the tape and can be differentiated again.
package ops

import "github.com/dario-coscia/PINA/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// node holds the bookkeeping shared by every operation.
type node struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors.
func (n node) Inputs() []*tensor.RawTensor {
	return n.inputs
}

// Output returns the output tensor.
func (n node) Output() *tensor.RawTensor {
	return n.output
}

func unary(x, out *tensor.RawTensor) node {
	return node{inputs: []*tensor.RawTensor{x}, output: out}
}

func binary(a, b, out *tensor.RawTensor) node {
	return node{inputs: []*tensor.RawTensor{a, b}, output: out}
}
