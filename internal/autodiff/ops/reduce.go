package ops

import "github.com/dario-coscia/PINA/internal/tensor"

// SumOp represents the sum of all elements into a scalar.
// The gradient broadcasts back to the input shape.
type SumOp struct{ node }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{unary(x, output)}
}

// Backward expands the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Expand(outputGrad, op.inputs[0].Shape())}
}

// SumDimOp represents a sum along one dimension.
type SumDimOp struct {
	node
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	if dim < 0 {
		dim += len(x.Shape())
	}
	return &SumDimOp{node: unary(x, output), dim: dim, keepDim: keepDim}
}

// Backward restores the reduced dimension and expands the gradient.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inShape := op.inputs[0].Shape()
	grad := outputGrad
	if !op.keepDim {
		kept := inShape.Clone()
		kept[op.dim] = 1
		grad = backend.Reshape(grad, kept)
	}
	return []*tensor.RawTensor{backend.Expand(grad, inShape)}
}
