package cpu

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Sum adds every element of x into a scalar (0-D) tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var acc float64
		for _, v := range x.AsFloat32() {
			acc += float64(v)
		}
		result.AsFloat32()[0] = float32(acc)
	case tensor.Float64:
		var acc float64
		for _, v := range x.AsFloat64() {
			acc += v
		}
		result.AsFloat64()[0] = acc
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}
	return result
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	y := backend.SumDim(x, -1, true)   // [2, 3] -> [2, 1]
//	z := backend.SumDim(x, 0, false)   // [2, 3] -> [3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim("sumdim", dim, len(shape))

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, len(shape)-1)
		outShape = append(outShape, shape[:dim]...)
		outShape = append(outShape, shape[dim+1:]...)
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: failed to create result tensor: %v", err))
	}

	outer, size, inner := splitDim(shape, dim)
	switch x.DType() {
	case tensor.Float32:
		sumDimKernel(values[float32](result), x.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		sumDimKernel(values[float64](result), x.AsFloat64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s", x.DType()))
	}
	return result
}

func sumDimKernel[T tensor.Float](out, in []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for s := 0; s < size; s++ {
			base := (o*size + s) * inner
			for i := 0; i < inner; i++ {
				out[o*inner+i] += in[base+i]
			}
		}
	}
}

// splitDim views shape as (outer, shape[dim], inner).
func splitDim(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for _, d := range shape[:dim] {
		outer *= d
	}
	for _, d := range shape[dim+1:] {
		inner *= d
	}
	return outer, shape[dim], inner
}

func normalizeDim(op string, dim, ndim int) int {
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for %dD tensor", op, dim, ndim))
	}
	return dim
}
