// Copyright 2025 The PINA Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the tensor core: raw tensors, shapes, data types and
// the Backend interface that compute backends implement.
//
// Tensors are plain byte buffers with a shape and a data type. All
// computation goes through a Backend:
//
//	backend := cpu.New()
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
//	y := backend.Mul(x, x)
package tensor

import (
	"math/rand"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// RawTensor is the low-level tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType(), Device()
//   - Type-safe data access via AsFloat32(), AsFloat64(), AsInt64()
//   - Conversion copies via Float64s()
//   - Deep copies via Clone()
type RawTensor = tensor.RawTensor

// Shape is a tensor shape (dimension sizes).
type Shape = tensor.Shape

// DataType identifies the element type of a tensor.
type DataType = tensor.DataType

// Device identifies where tensor data lives.
type Device = tensor.Device

// DType constrains generic element types.
type DType = tensor.DType

// Backend defines the interface that all compute backends must implement.
//
// Implementations:
//   - backend/cpu: Pure Go, gonum BLAS matmul
//
// Decorator backends for additional functionality:
//   - autodiff: Automatic differentiation (wraps any backend)
type Backend = tensor.Backend

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int64   = tensor.Int64
)

// CPU is the host device.
const CPU = tensor.CPU

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice creates a tensor from a typed slice. The data is copied.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// FromFloat64s creates a tensor of the given dtype from float64 values.
func FromFloat64s(values []float64, shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.FromFloat64s(values, shape, dtype, device)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Ones(shape, dtype, device)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	return tensor.Full(shape, value, dtype, device)
}

// Rand creates a tensor with values drawn uniformly from [lo, hi).
// A nil rng uses the global source.
func Rand(shape Shape, lo, hi float64, dtype DataType, device Device, rng *rand.Rand) *RawTensor {
	return tensor.Rand(shape, lo, hi, dtype, device, rng)
}

// Randn creates a tensor with standard normal values.
func Randn(shape Shape, dtype DataType, device Device, rng *rand.Rand) *RawTensor {
	return tensor.Randn(shape, dtype, device, rng)
}

// BroadcastShapes computes the broadcast shape of a and b using NumPy rules.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
