// Package autodiff implements automatic differentiation using the decorator pattern.
//
// AutodiffBackend wraps any Backend implementation and adds gradient tracking
// capabilities through a GradientTape.
//
// Architecture:
//   - Decorator pattern: AutodiffBackend[B] wraps any Backend implementation
//   - GradientTape: Records operations during forward pass
//   - Operation interface: Each op implements its backward pass with backend calls
//   - Reverse-mode AD: Computes gradients efficiently using chain rule
//
// Grad with createGraph records the backward computation itself, which is how
// second derivatives (Laplacians) are obtained.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	backend.RequireGrad(x)
//	y := backend.Mul(x, x)                    // y = x²
//	dy, _ := backend.Grad(y, x, nil, true)    // 2x, still on the tape
//	d2y, _ := backend.Grad(dy, x, nil, false) // 2
package autodiff

import (
	"github.com/dario-coscia/PINA/internal/autodiff/ops"
	"github.com/dario-coscia/PINA/internal/tensor"
)

// AutodiffBackend wraps a Backend and adds automatic differentiation.
// It implements the tensor.Backend interface and records operations in a GradientTape.
//
// Type parameter B must satisfy the tensor.Backend interface.
type AutodiffBackend[B tensor.Backend] struct {
	inner B             // Wrapped backend (CPU, GPU, etc.)
	tape  *GradientTape // Records operations for backpropagation
}

// New creates a new AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend for direct access.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// RequireGrad marks a leaf tensor as gradient-tracked.
func (b *AutodiffBackend[B]) RequireGrad(raw *tensor.RawTensor) {
	b.tape.Watch(raw)
}

// IsTracked reports whether raw is a tracked leaf or a recorded op output.
func (b *AutodiffBackend[B]) IsTracked(raw *tensor.RawTensor) bool {
	return b.tape.IsTracked(raw)
}

// Add performs element-wise addition and records the operation.
func (b *AutodiffBackend[B]) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Add(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(a, c, result))
	}
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sub(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSubOp(a, c, result))
	}
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Mul(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulOp(a, c, result))
	}
	return result
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Div(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewDivOp(a, c, result))
	}
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.MatMul(a, c)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMatMulOp(a, c, result))
	}
	return result
}

// Transpose transposes a 2-D tensor and records the operation.
func (b *AutodiffBackend[B]) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Transpose(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTransposeOp(x, result))
	}
	return result
}

// Reshape changes the shape and records the operation.
func (b *AutodiffBackend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Reshape(x, shape)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(x, result))
	}
	return result
}

// Expand broadcasts x to shape and records the operation.
func (b *AutodiffBackend[B]) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result := b.inner.Expand(x, shape)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewExpandOp(x, result))
	}
	return result
}

// AddScalar adds a scalar and records the operation.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.AddScalar(x, s)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddScalarOp(x, result))
	}
	return result
}

// MulScalar multiplies by a scalar and records the operation.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, s float64) *tensor.RawTensor {
	result := b.inner.MulScalar(x, s)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulScalarOp(x, result, s))
	}
	return result
}

// PowScalar raises x to a power and records the operation.
func (b *AutodiffBackend[B]) PowScalar(x *tensor.RawTensor, p float64) *tensor.RawTensor {
	result := b.inner.PowScalar(x, p)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewPowScalarOp(x, result, p))
	}
	return result
}

// Neg negates x and records the operation.
func (b *AutodiffBackend[B]) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Neg(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewNegOp(x, result))
	}
	return result
}

// Exp computes e^x and records the operation.
func (b *AutodiffBackend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Exp(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewExpOp(x, result))
	}
	return result
}

// Log computes ln(x) and records the operation.
func (b *AutodiffBackend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Log(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewLogOp(x, result))
	}
	return result
}

// Sin computes sin(x) and records the operation.
func (b *AutodiffBackend[B]) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sin(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSinOp(x, result))
	}
	return result
}

// Cos computes cos(x) and records the operation.
func (b *AutodiffBackend[B]) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Cos(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewCosOp(x, result))
	}
	return result
}

// Tanh applies tanh and records the operation.
func (b *AutodiffBackend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Tanh(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTanhOp(x, result))
	}
	return result
}

// Sigmoid applies the logistic function and records the operation.
func (b *AutodiffBackend[B]) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sigmoid(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSigmoidOp(x, result))
	}
	return result
}

// Softplus applies log(1 + e^x) and records the operation.
func (b *AutodiffBackend[B]) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Softplus(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSoftplusOp(x, result))
	}
	return result
}

// ReLU applies max(x, 0) and records the operation.
func (b *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.ReLU(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReLUOp(x, result))
	}
	return result
}

// Sum reduces x to a scalar and records the operation.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := b.inner.Sum(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumOp(x, result))
	}
	return result
}

// SumDim sums along dim and records the operation.
func (b *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	result := b.inner.SumDim(x, dim, keepDim)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumDimOp(x, result, dim, keepDim))
	}
	return result
}

// Cat concatenates along dim and records the operation.
func (b *AutodiffBackend[B]) Cat(ts []*tensor.RawTensor, dim int) *tensor.RawTensor {
	result := b.inner.Cat(ts, dim)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewCatOp(append([]*tensor.RawTensor(nil), ts...), result, dim))
	}
	return result
}

// IndexSelect gathers slices along dim and records the operation.
func (b *AutodiffBackend[B]) IndexSelect(x *tensor.RawTensor, dim int, indices []int) *tensor.RawTensor {
	result := b.inner.IndexSelect(x, dim, indices)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewIndexSelectOp(x, result, dim, indices))
	}
	return result
}

// IndexScatter scatters slices along dim and records the operation.
func (b *AutodiffBackend[B]) IndexScatter(x *tensor.RawTensor, dim int, indices []int, size int) *tensor.RawTensor {
	result := b.inner.IndexScatter(x, dim, indices, size)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewIndexScatterOp(x, result, dim, indices))
	}
	return result
}

// Cast converts the dtype and records the operation.
func (b *AutodiffBackend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	result := b.inner.Cast(x, dtype)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewCastOp(x, result))
	}
	return result
}
