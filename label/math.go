package label

import (
	"fmt"

	"github.com/dario-coscia/PINA/tensor"
)

// Element-wise arithmetic. Operands must have the same row count; a
// single-column operand broadcasts across the other's columns. The result
// keeps the labels of the operand whose width it has, the receiver first.
// Shape mismatches panic in the backend.

// Add returns t + other.
func (t *LabelTensor) Add(other *LabelTensor) *LabelTensor {
	return t.binary(other, t.backend.Add(t.raw, other.raw))
}

// Sub returns t - other.
func (t *LabelTensor) Sub(other *LabelTensor) *LabelTensor {
	return t.binary(other, t.backend.Sub(t.raw, other.raw))
}

// Mul returns t * other.
func (t *LabelTensor) Mul(other *LabelTensor) *LabelTensor {
	return t.binary(other, t.backend.Mul(t.raw, other.raw))
}

// Div returns t / other.
func (t *LabelTensor) Div(other *LabelTensor) *LabelTensor {
	return t.binary(other, t.backend.Div(t.raw, other.raw))
}

func (t *LabelTensor) binary(other *LabelTensor, raw *tensor.RawTensor) *LabelTensor {
	switch cols := raw.Shape()[1]; cols {
	case t.Cols():
		return t.derive(raw)
	case other.Cols():
		return other.derive(raw).WithBackend(t.backend)
	default:
		panic(fmt.Sprintf("label: result has %d columns, operands %v and %v", cols, t.labels, other.labels))
	}
}

// AddScalar returns t + v.
func (t *LabelTensor) AddScalar(v float64) *LabelTensor {
	return t.derive(t.backend.AddScalar(t.raw, v))
}

// MulScalar returns t * v.
func (t *LabelTensor) MulScalar(v float64) *LabelTensor {
	return t.derive(t.backend.MulScalar(t.raw, v))
}

// Pow returns t raised to p.
func (t *LabelTensor) Pow(p float64) *LabelTensor {
	return t.derive(t.backend.PowScalar(t.raw, p))
}

// Neg returns -t.
func (t *LabelTensor) Neg() *LabelTensor { return t.derive(t.backend.Neg(t.raw)) }

// Exp returns e^t.
func (t *LabelTensor) Exp() *LabelTensor { return t.derive(t.backend.Exp(t.raw)) }

// Log returns the natural logarithm of t.
func (t *LabelTensor) Log() *LabelTensor { return t.derive(t.backend.Log(t.raw)) }

// Sin returns sin(t).
func (t *LabelTensor) Sin() *LabelTensor { return t.derive(t.backend.Sin(t.raw)) }

// Cos returns cos(t).
func (t *LabelTensor) Cos() *LabelTensor { return t.derive(t.backend.Cos(t.raw)) }

// Tanh returns tanh(t).
func (t *LabelTensor) Tanh() *LabelTensor { return t.derive(t.backend.Tanh(t.raw)) }

// Abs returns |t|, built from ReLU so the subgradient at zero is zero.
func (t *LabelTensor) Abs() *LabelTensor {
	return t.derive(t.backend.Add(t.backend.ReLU(t.raw), t.backend.ReLU(t.backend.Neg(t.raw))))
}

// SumColumns adds all columns into a single column named label.
func (t *LabelTensor) SumColumns(label string) *LabelTensor {
	raw := t.raw
	if t.Cols() > 1 {
		raw = t.backend.SumDim(t.raw, 1, true)
	}
	return &LabelTensor{raw: raw, labels: []string{label}, backend: t.backend}
}
