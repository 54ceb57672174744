package cpu

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Cast converts x to dtype. The result is always a new tensor, even when the
// dtype is unchanged.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}
	result, err := tensor.FromFloat64s(x.Float64s(), x.Shape(), dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err))
	}
	return result
}
