// Copyright 2025 The PINA Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// The backend supports float32 and float64 with NumPy-compatible
// broadcasting. Matrix multiplication runs through gonum BLAS; large
// element-wise kernels are split across goroutines.
//
//	backend := cpu.New()
//	fmt.Println(backend.Features())
//
// The CPU backend is safe for concurrent use. Operations never mutate their
// inputs.
package cpu

import (
	internalcpu "github.com/dario-coscia/PINA/internal/backend/cpu"
	"github.com/dario-coscia/PINA/internal/parallel"
	"github.com/dario-coscia/PINA/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Features describes the host CPU.
type Features = internalcpu.Features

// ParallelConfig controls how kernels are split across goroutines.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend sized to the host's logical cores.
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns the parallelism settings used by New.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}
