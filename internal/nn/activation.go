package nn

import (
	"fmt"
	"strings"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Activation builds an activation module bound to a backend.
// FeedForward calls it once per hidden layer.
type Activation func(backend tensor.Backend) Module

// ActivationByName resolves "tanh", "sigmoid", "softplus", "relu" or "sin".
func ActivationByName(name string) (Activation, error) {
	switch strings.ToLower(name) {
	case "tanh", "":
		return func(b tensor.Backend) Module { return NewTanh(b) }, nil
	case "sigmoid":
		return func(b tensor.Backend) Module { return NewSigmoid(b) }, nil
	case "softplus":
		return func(b tensor.Backend) Module { return NewSoftplus(b) }, nil
	case "relu":
		return func(b tensor.Backend) Module { return NewReLU(b) }, nil
	case "sin":
		return func(b tensor.Backend) Module { return NewSin(b) }, nil
	default:
		return nil, fmt.Errorf("unknown activation %q", name)
	}
}

// elementwise is the shared shape of parameter-free activation modules.
type elementwise struct {
	backend tensor.Backend
}

// Parameters returns an empty slice (activations have no trainable parameters).
func (elementwise) Parameters() []*Parameter {
	return nil
}

// Tanh is a hyperbolic tangent activation module.
//
// Applies the element-wise function: f(x) = tanh(x)
//
// Tanh is the default PINN activation: it is smooth, so second derivatives
// of the network output are well defined.
type Tanh struct{ elementwise }

// NewTanh creates a new Tanh activation module.
func NewTanh(backend tensor.Backend) *Tanh {
	return &Tanh{elementwise{backend}}
}

// Forward applies tanh activation.
func (a *Tanh) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	return a.backend.Tanh(input)
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: f(x) = 1 / (1 + exp(-x))
type Sigmoid struct{ elementwise }

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid(backend tensor.Backend) *Sigmoid {
	return &Sigmoid{elementwise{backend}}
}

// Forward applies sigmoid activation.
func (a *Sigmoid) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	return a.backend.Sigmoid(input)
}

// Softplus applies f(x) = log(1 + exp(x)).
type Softplus struct{ elementwise }

// NewSoftplus creates a new Softplus activation module.
func NewSoftplus(backend tensor.Backend) *Softplus {
	return &Softplus{elementwise{backend}}
}

// Forward applies softplus activation.
func (a *Softplus) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	return a.backend.Softplus(input)
}

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Its second derivative is zero almost everywhere, which makes it a poor
// choice for equations involving a Laplacian.
type ReLU struct{ elementwise }

// NewReLU creates a new ReLU activation module.
func NewReLU(backend tensor.Backend) *ReLU {
	return &ReLU{elementwise{backend}}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (a *ReLU) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	return a.backend.ReLU(input)
}

// Sin applies f(x) = sin(x).
type Sin struct{ elementwise }

// NewSin creates a new Sin activation module.
func NewSin(backend tensor.Backend) *Sin {
	return &Sin{elementwise{backend}}
}

// Forward applies the sine.
func (a *Sin) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	return a.backend.Sin(input)
}
