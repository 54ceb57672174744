package ops

import "github.com/dario-coscia/PINA/internal/tensor"

// CatOp represents concatenation along a dimension.
// Each input receives the matching slice of the gradient.
type CatOp struct {
	node
	dim int
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	if dim < 0 {
		dim += len(output.Shape())
	}
	return &CatOp{node: node{inputs: inputs, output: output}, dim: dim}
}

// Backward splits outputGrad back into the input pieces.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		size := in.Shape()[op.dim]
		grads[i] = backend.IndexSelect(outputGrad, op.dim, span(offset, size))
		offset += size
	}
	return grads
}

// IndexSelectOp represents gathering slices along a dimension.
// The gradient is scattered back with repeated indices accumulated.
type IndexSelectOp struct {
	node
	dim     int
	indices []int
}

// NewIndexSelectOp creates a new IndexSelectOp.
func NewIndexSelectOp(x, output *tensor.RawTensor, dim int, indices []int) *IndexSelectOp {
	if dim < 0 {
		dim += len(x.Shape())
	}
	return &IndexSelectOp{node: unary(x, output), dim: dim, indices: append([]int(nil), indices...)}
}

// Backward scatters outputGrad into the input shape.
func (op *IndexSelectOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	size := op.inputs[0].Shape()[op.dim]
	return []*tensor.RawTensor{backend.IndexScatter(outputGrad, op.dim, op.indices, size)}
}

// IndexScatterOp is the adjoint of IndexSelectOp.
type IndexScatterOp struct {
	node
	dim     int
	indices []int
}

// NewIndexScatterOp creates a new IndexScatterOp.
func NewIndexScatterOp(x, output *tensor.RawTensor, dim int, indices []int) *IndexScatterOp {
	if dim < 0 {
		dim += len(x.Shape())
	}
	return &IndexScatterOp{node: unary(x, output), dim: dim, indices: append([]int(nil), indices...)}
}

// Backward gathers outputGrad at the scattered indices.
func (op *IndexScatterOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.IndexSelect(outputGrad, op.dim, op.indices)}
}

func span(start, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = start + i
	}
	return idx
}
