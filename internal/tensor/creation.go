package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4}, tensor.Float64, tensor.CPU)
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return MustRaw(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return Full(shape, 1, dtype, device)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	t := MustRaw(shape, dtype, device)
	switch dtype {
	case Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	case Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Int64:
		data := t.AsInt64()
		for i := range data {
			data[i] = int64(value)
		}
	}
	return t
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d doesn't match shape %v (expected %d elements)",
			len(data), shape, shape.NumElements())
	}

	raw, err := NewRaw(shape, inferDataType[T](), device)
	if err != nil {
		return nil, err
	}
	switch d := any(data).(type) {
	case []float32:
		copy(raw.AsFloat32(), d)
	case []float64:
		copy(raw.AsFloat64(), d)
	case []int64:
		copy(raw.AsInt64(), d)
	default:
		values := make([]float64, len(data))
		for i, v := range data {
			values[i] = float64(v)
		}
		raw.SetFloat64s(values)
	}
	return raw, nil
}

// FromFloat64s creates a tensor of the given dtype from float64 values.
func FromFloat64s(values []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d doesn't match shape %v (expected %d elements)",
			len(values), shape, shape.NumElements())
	}
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	raw.SetFloat64s(values)
	return raw, nil
}

// Rand creates a tensor with values drawn uniformly from [lo, hi).
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Rand(shape Shape, lo, hi float64, dtype DataType, device Device, rng *rand.Rand) *RawTensor {
	values := make([]float64, shape.NumElements())
	for i := range values {
		values[i] = lo + (hi-lo)*rng.Float64()
	}
	t := MustRaw(shape, dtype, device)
	t.SetFloat64s(values)
	return t
}

// Randn creates a tensor with values from a normal distribution (mean=0, std=1).
// Uses Box-Muller transform for generating normal distribution.
func Randn(shape Shape, dtype DataType, device Device, rng *rand.Rand) *RawTensor {
	values := make([]float64, shape.NumElements())
	for i := 0; i < len(values); i += 2 {
		u1 := rng.Float64()
		for u1 == 0 {
			u1 = rng.Float64()
		}
		u2 := rng.Float64()
		r := math.Sqrt(-2 * math.Log(u1))
		values[i] = r * math.Cos(2*math.Pi*u2)
		if i+1 < len(values) {
			values[i+1] = r * math.Sin(2*math.Pi*u2)
		}
	}
	t := MustRaw(shape, dtype, device)
	t.SetFloat64s(values)
	return t
}
