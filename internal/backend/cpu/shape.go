package cpu

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Transpose swaps the two axes of a 2-D tensor.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got %dD", len(shape)))
	}
	rows, cols := shape[0], shape[1]

	result, err := tensor.NewRaw(tensor.Shape{cols, rows}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: failed to create result tensor: %v", err))
	}

	// Element moves are dtype agnostic, so work on bytes.
	size := x.DType().Size()
	src, dst := x.Data(), result.Data()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			copy(dst[(j*rows+i)*size:(j*rows+i+1)*size], src[(i*cols+j)*size:(i*cols+j+1)*size])
		}
	}
	return result
}

// Reshape returns a copy of x with a new shape of the same element count.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result, err := x.Clone().Reshaped(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Expand broadcasts x to shape following NumPy rules.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out, _, err := tensor.BroadcastShapes(x.Shape(), shape)
	if err != nil || !out.Equal(shape) {
		panic(fmt.Sprintf("expand: cannot broadcast %v to %v", x.Shape(), shape))
	}

	result, err := tensor.NewRaw(shape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		broadcastCopy[float32](result, x)
	case tensor.Float64:
		broadcastCopy[float64](result, x)
	default:
		panic(fmt.Sprintf("expand: unsupported dtype %s", x.DType()))
	}
	return result
}
