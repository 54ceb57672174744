// Package nn implements neural network modules used as PINN surrogates.
//
// This package provides building blocks for constructing neural networks:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear: Fully connected layer
//   - Activations: Tanh, Sigmoid, Softplus, ReLU, Sin
//   - FeedForward: the default multi-layer perceptron
//   - Loss functions: MSE, Lp
//   - Sequential: Container for stacking layers
//
// Modules compute on *tensor.RawTensor through a tensor.Backend; pass an
// autodiff backend to make them differentiable.
package nn

import (
	"github.com/dario-coscia/PINA/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(2, 20, backend, nil),
//	    nn.NewTanh(backend),
//	    nn.NewLinear(20, 1, backend, nil),
//	)
type Module interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Linear layers expect [batch_size, in_features].
	Forward(input *tensor.RawTensor) *tensor.RawTensor

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter
}

// Cast converts every parameter of m to dtype.
func Cast(m Module, dtype tensor.DataType) {
	for _, p := range m.Parameters() {
		p.Cast(dtype)
	}
}

// NumParameters returns the total number of scalar parameters of m.
func NumParameters(m Module) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}
