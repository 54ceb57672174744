package cpu

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Cat concatenates tensors along dim. All inputs must share dtype, rank and
// every other dimension.
func (cpu *CPUBackend) Cat(ts []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(ts) == 0 {
		panic("cat: no tensors")
	}
	first := ts[0].Shape()
	dim = normalizeDim("cat", dim, len(first))

	outShape := first.Clone()
	outShape[dim] = 0
	for k, t := range ts {
		shape := t.Shape()
		if t.DType() != ts[0].DType() {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, want %s", k, t.DType(), ts[0].DType()))
		}
		if len(shape) != len(first) {
			panic(fmt.Sprintf("cat: tensor %d has rank %d, want %d", k, len(shape), len(first)))
		}
		for d := range shape {
			if d != dim && shape[d] != first[d] {
				panic(fmt.Sprintf("cat: shape mismatch %v vs %v at dim %d", shape, first, d))
			}
		}
		outShape[dim] += shape[dim]
	}

	result, err := tensor.NewRaw(outShape, ts[0].DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: failed to create result tensor: %v", err))
	}

	outer, _, inner := splitDim(outShape, dim)
	size := ts[0].DType().Size()
	dst := result.Data()
	off := 0
	for o := 0; o < outer; o++ {
		for _, t := range ts {
			block := t.Shape()[dim] * inner * size
			copy(dst[off:off+block], t.Data()[o*block:(o+1)*block])
			off += block
		}
	}
	return result
}

// IndexSelect gathers the slices of x at indices along dim.
func (cpu *CPUBackend) IndexSelect(x *tensor.RawTensor, dim int, indices []int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("indexselect", dim, len(shape))
	if len(indices) == 0 {
		panic("indexselect: empty index list")
	}

	outer, n, inner := splitDim(shape, dim)
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			panic(fmt.Sprintf("indexselect: index %d out of range [0, %d)", idx, n))
		}
	}

	outShape := shape.Clone()
	outShape[dim] = len(indices)
	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("indexselect: failed to create result tensor: %v", err))
	}

	block := inner * x.DType().Size()
	src, dst := x.Data(), result.Data()
	for o := 0; o < outer; o++ {
		for j, idx := range indices {
			from := (o*n + idx) * block
			to := (o*len(indices) + j) * block
			copy(dst[to:to+block], src[from:from+block])
		}
	}
	return result
}

// IndexScatter writes the slices of x into a zero tensor at indices along dim,
// accumulating repeated indices.
func (cpu *CPUBackend) IndexScatter(x *tensor.RawTensor, dim int, indices []int, size int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("indexscatter", dim, len(shape))
	if shape[dim] != len(indices) {
		panic(fmt.Sprintf("indexscatter: %d indices for dimension of size %d", len(indices), shape[dim]))
	}
	for _, idx := range indices {
		if idx < 0 || idx >= size {
			panic(fmt.Sprintf("indexscatter: index %d out of range [0, %d)", idx, size))
		}
	}

	outShape := shape.Clone()
	outShape[dim] = size
	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("indexscatter: failed to create result tensor: %v", err))
	}

	outer, _, inner := splitDim(shape, dim)
	switch x.DType() {
	case tensor.Float32:
		scatterKernel(values[float32](result), x.AsFloat32(), indices, outer, size, inner)
	case tensor.Float64:
		scatterKernel(values[float64](result), x.AsFloat64(), indices, outer, size, inner)
	default:
		panic(fmt.Sprintf("indexscatter: unsupported dtype %s", x.DType()))
	}
	return result
}

func scatterKernel[T tensor.Float](out, in []T, indices []int, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for j, idx := range indices {
			from := (o*len(indices) + j) * inner
			to := (o*size + idx) * inner
			for i := 0; i < inner; i++ {
				out[to+i] += in[from+i]
			}
		}
	}
}
