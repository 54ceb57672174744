package cpu

import (
	"math"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// AddScalar adds s to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary("addscalar", x, func(v float64) float64 { return v + s })
}

// MulScalar multiplies every element by s.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	return cpu.unary("mulscalar", x, func(v float64) float64 { return v * s })
}

// PowScalar raises every element to the power p.
func (cpu *CPUBackend) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	switch p {
	case 1:
		return cpu.unary("pow", x, func(v float64) float64 { return v })
	case 2:
		return cpu.unary("pow", x, func(v float64) float64 { return v * v })
	}
	return cpu.unary("pow", x, func(v float64) float64 { return math.Pow(v, p) })
}

// Neg negates every element.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("neg", x, func(v float64) float64 { return -v })
}

// Exp computes e^x element-wise.
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x, math.Exp)
}

// Log computes the natural logarithm element-wise.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log", x, math.Log)
}

// Sin computes sin(x) element-wise.
func (cpu *CPUBackend) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sin", x, math.Sin)
}

// Cos computes cos(x) element-wise.
func (cpu *CPUBackend) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("cos", x, math.Cos)
}
