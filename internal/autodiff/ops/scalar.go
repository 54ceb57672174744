package ops

import "github.com/dario-coscia/PINA/internal/tensor"

// AddScalarOp represents output = x + s. The gradient passes through.
type AddScalarOp struct{ node }

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{unary(x, output)}
}

// Backward returns outputGrad unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}

// MulScalarOp represents output = x * s.
type MulScalarOp struct {
	node
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{node: unary(x, output), scalar: scalar}
}

// Backward computes grad_x = outputGrad * s.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// PowScalarOp represents output = x^p.
//
// Backward pass: grad_x = outputGrad * p * x^(p-1)
type PowScalarOp struct {
	node
	power float64
}

// NewPowScalarOp creates a new PowScalarOp.
func NewPowScalarOp(x, output *tensor.RawTensor, power float64) *PowScalarOp {
	return &PowScalarOp{node: unary(x, output), power: power}
}

// Backward computes the input gradient for a power.
func (op *PowScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	local := backend.MulScalar(backend.PowScalar(x, op.power-1), op.power)
	return []*tensor.RawTensor{backend.Mul(outputGrad, local)}
}

// NegOp represents output = -x.
type NegOp struct{ node }

// NewNegOp creates a new NegOp.
func NewNegOp(x, output *tensor.RawTensor) *NegOp {
	return &NegOp{unary(x, output)}
}

// Backward computes grad_x = -outputGrad.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(outputGrad)}
}
