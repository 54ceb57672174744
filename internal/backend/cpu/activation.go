package cpu

import (
	"math"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("tanh", x, math.Tanh)
}

// Sigmoid applies 1 / (1 + e^-x) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x, sigmoid)
}

// Softplus applies log(1 + e^x) element-wise.
func (cpu *CPUBackend) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("softplus", x, func(v float64) float64 {
		// log1p(e^-|v|) + max(v, 0) does not overflow for large |v|.
		return math.Log1p(math.Exp(-math.Abs(v))) + math.Max(v, 0)
	})
}

// ReLU applies max(x, 0) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x, func(v float64) float64 { return math.Max(v, 0) })
}

func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}
