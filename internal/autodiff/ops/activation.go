package ops

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// TanhOp represents output = tanh(x).
//
// Backward pass: grad_x = outputGrad * (1 - output²)
type TanhOp struct{ node }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{unary(x, output)}
}

// Backward computes the input gradient for tanh.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	local := backend.AddScalar(backend.Neg(backend.Mul(op.output, op.output)), 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, local)}
}

// SigmoidOp represents output = 1 / (1 + e^-x).
//
// Backward pass: grad_x = outputGrad * output * (1 - output)
type SigmoidOp struct{ node }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unary(x, output)}
}

// Backward computes the input gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	local := backend.Mul(op.output, backend.AddScalar(backend.Neg(op.output), 1))
	return []*tensor.RawTensor{backend.Mul(outputGrad, local)}
}

// SoftplusOp represents output = log(1 + e^x).
//
// Backward pass: grad_x = outputGrad * sigmoid(x)
type SoftplusOp struct{ node }

// NewSoftplusOp creates a new SoftplusOp.
func NewSoftplusOp(x, output *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{unary(x, output)}
}

// Backward computes the input gradient for softplus.
func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Sigmoid(op.inputs[0]))}
}

// ReLUOp represents a ReLU (Rectified Linear Unit) activation: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
//
// The mask is a constant, so second derivatives through ReLU are zero.
type ReLUOp struct{ node }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{unary(x, output)}
}

// Backward computes input gradient for ReLU.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, reluMask(op.inputs[0], backend))}
}

func reluMask(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	mask, err := tensor.NewRaw(x.Shape(), x.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("relu: failed to create mask: %v", err))
	}
	in := x.Float64s()
	m := make([]float64, len(in))
	for i, v := range in {
		if v > 0 {
			m[i] = 1
		}
	}
	mask.SetFloat64s(m)
	return mask
}
