package ops

import "github.com/dario-coscia/PINA/internal/tensor"

// ReshapeOp represents a reshape. The gradient is reshaped back.
type ReshapeOp struct{ node }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unary(x, output)}
}

// Backward reshapes outputGrad to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}

// ExpandOp represents broadcasting x to a larger shape.
// The gradient sums over the broadcast dimensions.
type ExpandOp struct{ node }

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(x, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{unary(x, output)}
}

// Backward reduces outputGrad to the input shape.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.inputs[0].Shape(), backend)}
}

// CastOp represents a dtype conversion. The gradient is cast back.
type CastOp struct{ node }

// NewCastOp creates a new CastOp.
func NewCastOp(x, output *tensor.RawTensor) *CastOp {
	return &CastOp{unary(x, output)}
}

// Backward casts outputGrad to the input dtype.
func (op *CastOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Cast(outputGrad, op.inputs[0].DType())}
}
