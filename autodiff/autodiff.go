// Copyright 2025 The PINA Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation using a
// gradient tape. It wraps any backend to add autodiff capabilities, and
// supports differentiating gradients again (createGraph), which is what
// second-order differential operators need.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	backend.RequireGrad(x)
//	y := backend.Mul(x, x)
//	dy, _ := backend.Grad(y, x, nil, true)
package autodiff

import (
	"github.com/dario-coscia/PINA/internal/autodiff"
	"github.com/dario-coscia/PINA/tensor"
)

// Backend is the autodiff-enabled backend.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable interface for backends that support backpropagation.
type BackwardCapable = autodiff.BackwardCapable

// Differentiator is a backend exposing the Grad primitive.
type Differentiator = autodiff.Differentiator

// Errors returned by Grad.
var (
	ErrNotRecording = autodiff.ErrNotRecording
	ErrNotTracked   = autodiff.ErrNotTracked
)

// Backward computes gradients of a scalar output for every recorded tensor.
func Backward(output *tensor.RawTensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(output, backend)
}
